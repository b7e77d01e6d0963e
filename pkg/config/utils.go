package config

import (
	"bufio"
	"os"

	"github.com/zeebo/errs"
)

func loadFirstLine(p string) (_ string, err error) {
	f, err := os.Open(p)
	if err != nil {
		return "", errs.Wrap(err)
	}
	defer func() {
		err = errs.Combine(err, f.Close())
	}()
	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", errs.Wrap(err)
		}
		return "", errs.New("%s is empty", p)
	}
	return scanner.Text(), nil
}

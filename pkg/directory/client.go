package directory

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"storj.io/permit-payment/pkg/failure"
)

// AddressesPath is where the contract-addresses document is served.
const AddressesPath = "/contracts/contract-addresses.json"

// maxDocumentSize bounds how much of the response is read.
const maxDocumentSize = 64 << 10

// Client fetches the contract-addresses document over HTTP.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// NewClient returns a client for the document served under baseURL. A nil
// httpClient uses http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: u,
		http:    httpClient,
	}, nil
}

// URL is the address of the document.
func (cli *Client) URL() string {
	u := *cli.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + AddressesPath
	return u.String()
}

// Fetch issues GET <base>/contracts/contract-addresses.json and validates the
// result.
func (cli *Client) Fetch(ctx context.Context) (*ContractInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cli.URL(), nil)
	if err != nil {
		return nil, failure.ConfigLoad.Wrap(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := cli.http.Do(req)
	if err != nil {
		return nil, failure.ConfigLoad.Wrap(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, failure.ConfigLoad.New("unexpected status %d: %s", resp.StatusCode, tryRead(resp.Body))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, failure.ConfigLoad.Wrap(err)
	}
	return Parse(data)
}

func tryRead(r io.Reader) string {
	b := make([]byte, 256)
	n, _ := r.Read(b)
	return string(b[:n])
}

func parseBaseURL(s string) (*url.URL, error) {
	if s == "" {
		return nil, failure.ConfigLoad.New("contracts URL is required")
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, failure.ConfigLoad.New("contracts URL is malformed: %v", err)
	}
	switch {
	case u.Scheme != "http" && u.Scheme != "https":
		return nil, failure.ConfigLoad.New("contracts URL scheme must be http or https")
	case u.User != nil:
		return nil, failure.ConfigLoad.New("contracts URL must not have user info")
	case u.Host == "":
		return nil, failure.ConfigLoad.New("contracts URL must specify the host")
	case u.RawQuery != "":
		return nil, failure.ConfigLoad.New("contracts URL must not have query values")
	case u.Fragment != "":
		return nil, failure.ConfigLoad.New("contracts URL must not have a fragment")
	}
	return u, nil
}

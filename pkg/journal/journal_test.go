package journal_test

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"storj.io/common/testcontext"

	"storj.io/permit-payment/pkg/journal"
)

var (
	account   = common.HexToAddress("0x1111111111111111111111111111111111111111")
	processor = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func TestRecordLifecycle(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	db, err := journal.OpenInMemory(ctx)
	require.NoError(t, err)
	defer ctx.Check(db.Close)

	attempt := &journal.Attempt{
		Account:   account,
		Processor: processor,
		Amount:    big.NewInt(10_000000),
		State:     journal.Aborted,
	}
	require.NoError(t, db.Record(ctx, attempt))
	require.NotZero(t, attempt.ID)
	assert.False(t, attempt.CreatedAt.IsZero())

	got, err := db.Fetch(ctx, attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, account, got.Account)
	assert.Equal(t, processor, got.Processor)
	assert.Equal(t, big.NewInt(10_000000), got.Amount)
	assert.Nil(t, got.Approval)
	assert.Nil(t, got.Nonce)
	assert.Equal(t, common.Hash{}, got.TxHash)
	assert.Equal(t, journal.Aborted, got.State)
	assert.True(t, attempt.CreatedAt.Equal(got.CreatedAt))

	attempt.Approval = big.NewInt(1000)
	attempt.Nonce = big.NewInt(7)
	attempt.Deadline = 1_700_003_600
	attempt.TxHash = common.HexToHash("0xabc")
	attempt.State = journal.Pending
	require.NoError(t, db.Record(ctx, attempt))

	attempt.State = journal.Confirmed
	require.NoError(t, db.Record(ctx, attempt))

	got, err = db.Fetch(ctx, attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), got.Approval)
	assert.Equal(t, big.NewInt(7), got.Nonce)
	assert.Equal(t, int64(1_700_003_600), got.Deadline)
	assert.Equal(t, common.HexToHash("0xabc"), got.TxHash)
	assert.Equal(t, journal.Confirmed, got.State)
}

func TestListAndCount(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	db, err := journal.OpenInMemory(ctx)
	require.NoError(t, err)
	defer ctx.Check(db.Close)

	for _, state := range []journal.State{journal.Confirmed, journal.Aborted, journal.Confirmed, journal.Failed} {
		require.NoError(t, db.Record(ctx, &journal.Attempt{
			Account:   account,
			Processor: processor,
			Amount:    big.NewInt(1),
			State:     state,
			Outcome:   "unknown",
			Message:   "message for " + string(state),
		}))
	}

	attempts, err := db.List(ctx)
	require.NoError(t, err)
	require.Len(t, attempts, 4)
	for i, a := range attempts {
		assert.Equal(t, int64(i+1), a.ID)
	}
	assert.Equal(t, "message for failed", attempts[3].Message)

	counts, err := db.CountByState(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[journal.State]int64{
		journal.Confirmed: 2,
		journal.Aborted:   1,
		journal.Failed:    1,
	}, counts)
}

func TestRecordErrors(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	db, err := journal.OpenInMemory(ctx)
	require.NoError(t, err)
	defer ctx.Check(db.Close)

	err = db.Record(ctx, &journal.Attempt{Amount: big.NewInt(1), State: "bogus"})
	require.EqualError(t, err, `invalid attempt state "bogus"`)

	err = db.Record(ctx, &journal.Attempt{State: journal.Aborted})
	require.EqualError(t, err, "attempt amount is required")

	err = db.Record(ctx, &journal.Attempt{ID: 42, Amount: big.NewInt(1), State: journal.Aborted})
	require.EqualError(t, err, "attempt 42 not found")

	_, err = db.Fetch(ctx, 42)
	require.EqualError(t, err, "attempt 42 not found")
}

func TestOpenFile(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "journal.db")

	_, err := journal.Open(ctx, path, true)
	require.Error(t, err)

	db, err := journal.Open(ctx, path, false)
	require.NoError(t, err)
	require.NoError(t, db.Record(ctx, &journal.Attempt{
		Account:   account,
		Processor: processor,
		Amount:    big.NewInt(5),
		State:     journal.Failed,
	}))
	require.NoError(t, db.Close())

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary journal must be renamed into place")

	db, err = journal.Open(ctx, path, true)
	require.NoError(t, err)
	defer ctx.Check(db.Close)

	attempts, err := db.List(ctx)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, journal.Failed, attempts[0].State)
}

func TestStateFromReceipt(t *testing.T) {
	assert.Equal(t, journal.Confirmed, journal.StateFromReceipt(&types.Receipt{Status: types.ReceiptStatusSuccessful}))
	assert.Equal(t, journal.Failed, journal.StateFromReceipt(&types.Receipt{Status: types.ReceiptStatusFailed}))
	assert.Equal(t, journal.Failed, journal.StateFromReceipt(nil))

	for _, state := range journal.States {
		got, ok := journal.StateFromString(string(state))
		assert.True(t, ok)
		assert.Equal(t, state, got)
	}
	_, ok := journal.StateFromString("dropped")
	assert.False(t, ok)

	assert.False(t, journal.Pending.Final())
	assert.True(t, journal.Confirmed.Final())
}

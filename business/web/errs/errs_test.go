package errs_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/ardanlabs/blocktrading/business/web/errs"
	"github.com/stretchr/testify/require"
)

func TestTrusted(t *testing.T) {
	sentinel := errors.New("not the owner of the block")

	err := fmt.Errorf("handler: %w", errs.NewTrusted(fmt.Errorf("%w: 4", sentinel), http.StatusForbidden))

	require.True(t, errs.IsTrusted(err))
	require.ErrorIs(t, err, sentinel)

	te := errs.GetTrusted(err)
	require.NotNil(t, te)
	require.Equal(t, http.StatusForbidden, te.Status)
	require.Equal(t, "not the owner of the block: 4", te.Error())

	require.False(t, errs.IsTrusted(sentinel))
	require.Nil(t, errs.GetTrusted(sentinel))
}

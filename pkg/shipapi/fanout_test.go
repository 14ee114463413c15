package shipapi_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tournevent/shipkit/pkg/shipapi"
)

func TestFetchAll_KeepsOrderAndCollectsErrors(t *testing.T) {
	fetch := func(ctx context.Context, id string) (string, error) {
		if id == "bad" {
			return "", shipapi.NewError(shipapi.KindNotFound, "missing")
		}
		return "got-" + id, nil
	}

	results, errs := shipapi.FetchAll(context.Background(), []string{"a", "bad", "c", "d"}, fetch)

	assert.Equal(t, []string{"got-a", "got-c", "got-d"}, results)
	assert.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], shipapi.ErrNotFound))
	assert.Contains(t, errs[0].Error(), "bad")
}

func TestFetchAll_Empty(t *testing.T) {
	results, errs := shipapi.FetchAll(context.Background(), nil, func(ctx context.Context, id string) (int, error) {
		return 0, nil
	})

	assert.Empty(t, results)
	assert.Empty(t, errs)
}

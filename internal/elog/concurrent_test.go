package elog_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"pgbridge/internal/elog"
	"pgbridge/internal/nativesim"
)

func TestBridge_PerWorkerIsolation(t *testing.T) {
	const workers = 16

	type result struct {
		id      string
		scopes  []uint64
		emitted int
		message string
	}
	results := make([]result, workers)

	g, _ := errgroup.WithContext(context.Background())
	for i := range workers {
		g.Go(func() error {
			eng := nativesim.New()
			log := &exitLog{}
			b := elog.New(eng, elog.WithObserver(log.observe))

			err := eng.Call(func() error {
				return b.Boundary(func() error {
					return nest(b, i%4, func() error {
						if err := b.Elog(elog.Notice, "worker %d", i); err != nil {
							return err
						}
						return b.Elog(elog.Error, "worker %d failed", i)
					})
				})
			})
			if err == nil {
				return fmt.Errorf("worker %d: expected the error to reach the top level", i)
			}
			if b.Depth() != 0 || eng.ExceptionStack() != 0 {
				return fmt.Errorf("worker %d: stack not restored", i)
			}
			results[i] = result{
				id:      b.ID().String(),
				scopes:  log.scopes(),
				emitted: len(eng.Emitted()),
				message: err.Error(),
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	ids := make(map[string]bool)
	for i, r := range results {
		assert.False(t, ids[r.id], "bridge ids are unique")
		ids[r.id] = true

		// Scopes count from 1 in every bridge, innermost exit first.
		depth := i%4 + 1
		want := make([]uint64, 0, depth)
		for s := depth; s >= 1; s-- {
			want = append(want, uint64(s))
		}
		assert.Equal(t, want, r.scopes, "worker %d", i)
		assert.Equal(t, 2, r.emitted, "worker %d", i)
		assert.Equal(t, fmt.Sprintf("ERROR: worker %d failed", i), r.message)
	}
}

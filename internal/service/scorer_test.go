package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	t.Parallel()

	t.Run("substring title match scores 100", func(t *testing.T) {
		t.Parallel()

		candidate := ScoreInput{Title: "Inception 2"}
		reference := ScoreInput{Title: "Inception"}
		require.InDelta(t, 100.0, Score(candidate, reference), 1e-9)

		// Either direction counts.
		require.InDelta(t, 100.0, Score(reference, candidate), 1e-9)
	})

	t.Run("substring match is case insensitive", func(t *testing.T) {
		t.Parallel()

		candidate := ScoreInput{Title: "INCEPTION 2"}
		reference := ScoreInput{Title: "inception"}
		require.InDelta(t, 100.0, Score(candidate, reference), 1e-9)
	})

	t.Run("shared word scores 70", func(t *testing.T) {
		t.Parallel()

		candidate := ScoreInput{Title: "Dark Waters"}
		reference := ScoreInput{Title: "The Dark Knight"}
		require.InDelta(t, 70.0, Score(candidate, reference), 1e-9)
	})

	t.Run("unrelated titles score 0", func(t *testing.T) {
		t.Parallel()

		candidate := ScoreInput{Title: "Amelie"}
		reference := ScoreInput{Title: "The Dark Knight"}
		require.InDelta(t, 0.0, Score(candidate, reference), 1e-9)
	})

	t.Run("tag overlap normalizes by candidate tag count", func(t *testing.T) {
		t.Parallel()

		candidate := ScoreInput{Title: "x", Tags: []string{"thriller", "heist", "drama", "noir"}}
		reference := ScoreInput{Title: "y", Tags: []string{"thriller", "heist"}}

		// 2 shared / 4 candidate tags * 50 = 25.
		require.InDelta(t, 25.0, Score(candidate, reference), 1e-9)
	})

	t.Run("tag overlap is asymmetric", func(t *testing.T) {
		t.Parallel()

		a := ScoreInput{Title: "x", Tags: []string{"thriller", "heist", "drama", "noir"}}
		b := ScoreInput{Title: "y", Tags: []string{"thriller", "heist"}}

		// 2/2 * 50 = 50 in the other direction.
		require.InDelta(t, 50.0, Score(b, a), 1e-9)
	})

	t.Run("candidate without tags scores 0 on tags", func(t *testing.T) {
		t.Parallel()

		candidate := ScoreInput{Title: "x"}
		reference := ScoreInput{Title: "y", Tags: []string{"thriller"}}
		require.InDelta(t, 0.0, Score(candidate, reference), 1e-9)
	})

	t.Run("rating contributes three times its value", func(t *testing.T) {
		t.Parallel()

		candidate := ScoreInput{Title: "x", Rating: 8.0}
		reference := ScoreInput{Title: "y"}
		require.InDelta(t, 24.0, Score(candidate, reference), 1e-9)
	})

	t.Run("components sum", func(t *testing.T) {
		t.Parallel()

		candidate := ScoreInput{
			Title:  "Inception 2",
			Tags:   []string{"thriller", "heist", "drama", "noir"},
			Rating: 8.0,
		}
		reference := ScoreInput{
			Title: "Inception",
			Tags:  []string{"thriller", "heist"},
		}

		// 100 (title) + 25 (tags) + 24 (rating) = 149.
		require.InDelta(t, 149.0, Score(candidate, reference), 1e-9)
	})

	t.Run("deterministic for identical inputs", func(t *testing.T) {
		t.Parallel()

		candidate := ScoreInput{Title: "Heat", Tags: []string{"crime", "drama"}, Rating: 8.3}
		reference := ScoreInput{Title: "Heat 2", Tags: []string{"crime"}}

		first := Score(candidate, reference)
		for i := 0; i < 100; i++ {
			require.Equal(t, first, Score(candidate, reference))
		}
	})
}

func TestRankRelated(t *testing.T) {
	t.Parallel()

	type item struct {
		name   string
		rating float64
	}
	input := func(it item) ScoreInput {
		return ScoreInput{Title: it.name, Rating: it.rating}
	}

	t.Run("orders by descending score and truncates", func(t *testing.T) {
		t.Parallel()

		reference := ScoreInput{Title: "Inception"}
		candidates := []item{
			{name: "Amelie", rating: 1},
			{name: "Inception 2", rating: 1},
			{name: "b", rating: 2},
			{name: "c", rating: 3},
			{name: "d", rating: 4},
			{name: "e", rating: 5},
			{name: "f", rating: 6},
			{name: "g", rating: 7},
		}

		top := rankRelated(candidates, reference, input)
		require.Len(t, top, relatedLimit)
		require.Equal(t, "Inception 2", top[0].name)
		require.Equal(t, "g", top[1].name)
	})

	t.Run("stable order for equal scores", func(t *testing.T) {
		t.Parallel()

		reference := ScoreInput{Title: "zzz"}
		candidates := []item{
			{name: "first", rating: 5},
			{name: "second", rating: 5},
			{name: "third", rating: 5},
		}

		for i := 0; i < 20; i++ {
			top := rankRelated(candidates, reference, input)
			require.Equal(t, []string{"first", "second", "third"},
				[]string{top[0].name, top[1].name, top[2].name})
		}
	})

	t.Run("fewer candidates than limit", func(t *testing.T) {
		t.Parallel()

		top := rankRelated([]item{{name: "only"}}, ScoreInput{Title: "x"}, input)
		require.Len(t, top, 1)
	})

	t.Run("empty candidate pool", func(t *testing.T) {
		t.Parallel()

		top := rankRelated(nil, ScoreInput{Title: "x"}, input)
		require.Empty(t, top)
	})
}

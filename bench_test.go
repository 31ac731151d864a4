package piecetree

import (
	"math/rand"
	"strings"
	"testing"
)

func benchTree(b *testing.B, lines int) *Tree {
	b.Helper()
	var sb strings.Builder
	for i := 0; i < lines; i++ {
		sb.WriteString("some representative line of program text\n")
	}
	tree, err := New([]string{sb.String()}, "\n", false)
	if err != nil {
		b.Fatal(err)
	}
	return tree
}

func BenchmarkInsertSequential(b *testing.B) {
	tree, _ := New(nil, "\n", false)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tree.Insert(tree.Len(), "word ", false)
	}
}

func BenchmarkInsertRandom(b *testing.B) {
	tree := benchTree(b, 10_000)
	rng := rand.New(rand.NewSource(1))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tree.Insert(rng.Intn(tree.Len()), "x", false)
	}
}

func BenchmarkDeleteRandom(b *testing.B) {
	tree := benchTree(b, 10_000)
	rng := rand.New(rand.NewSource(1))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if tree.Len() < 2 {
			b.StopTimer()
			tree = benchTree(b, 10_000)
			b.StartTimer()
		}
		tree.Delete(rng.Intn(tree.Len()-1), 1)
	}
}

func BenchmarkPositionAt(b *testing.B) {
	tree := benchTree(b, 10_000)
	rng := rand.New(rand.NewSource(1))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = tree.PositionAt(rng.Intn(tree.Len()))
	}
}

func BenchmarkLineContent(b *testing.B) {
	tree := benchTree(b, 10_000)
	rng := rand.New(rand.NewSource(1))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = tree.LineContent(rng.Intn(tree.LineCount()) + 1)
	}
}

func BenchmarkLinesContent(b *testing.B) {
	tree := benchTree(b, 10_000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = tree.LinesContent()
	}
}

package darc

import (
	"testing"
)

func benchData() []int32 {
	data := make([]int32, 1<<20)
	for i := range data {
		data[i] = int32(i)
	}
	return data
}

func BenchmarkLocalCloneRelease(b *testing.B) {
	h := New(benchData())
	defer h.Release()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h.Clone().Release()
	}
}

func BenchmarkSharedCloneRelease(b *testing.B) {
	h := NewShared(benchData())
	defer h.Release()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h.Clone().Release()
	}
}

func BenchmarkSharedCloneReleaseParallel(b *testing.B) {
	h := NewShared(benchData())
	defer h.Release()
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(p *testing.PB) {
		w := h.Clone()
		for p.Next() {
			w.Clone().Release()
		}
		w.Release()
	})
}

// Promotion cost: one allocation, one migration, one release store.
func BenchmarkShare(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		New(i).Share().Release()
	}
}

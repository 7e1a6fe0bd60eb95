package integration

import (
	"net/http"
	"testing"
)

// Benchmark for catalog reads; to run: go test -bench=. ./test/integration -run ^$
func BenchmarkGetGoods(b *testing.B) {
	u := baseURL()
	client := &http.Client{}
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			resp, err := client.Get(u + "/goods")
			if err == nil {
				_ = resp.Body.Close()
			}
		}
	})
}

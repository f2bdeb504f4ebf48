package isingkm_test

import (
	"context"
	"fmt"

	"github.com/hupe1980/isingkm"
	"github.com/hupe1980/isingkm/kmeans"
)

func ExampleAnalyzer_Cluster() {
	points, _ := kmeans.FromRows([][]float64{{0, 0}, {0, 1}, {10, 0}, {10, 1}})

	a := isingkm.New(isingkm.WithRestarts(5), isingkm.WithSeed(7))
	res, err := a.Cluster(context.Background(), points, 2)
	if err != nil {
		panic(err)
	}
	fmt.Printf("sizes=%v sse=%.2f\n", res.Sizes(), res.SSE())
	// Output: sizes=[2 2] sse=0.25
}

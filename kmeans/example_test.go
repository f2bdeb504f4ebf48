package kmeans_test

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/hupe1980/isingkm/kmeans"
)

func ExampleRun() {
	points, _ := kmeans.FromRows([][]float64{{0, 0}, {0, 1}, {10, 0}, {10, 1}})

	res, err := kmeans.Run(context.Background(), points, kmeans.Config{
		K:        2,
		MaxIter:  100,
		Restarts: 5,
	}, rand.New(rand.NewPCG(1, 2)))
	if err != nil {
		panic(err)
	}

	rows := res.Centroids.Rows()
	sort.Slice(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })
	fmt.Println(rows)
	fmt.Printf("sse=%.2f\n", res.SSE())
	// Output:
	// [[0 0.5] [10 0.5]]
	// sse=0.25
}

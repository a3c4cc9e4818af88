// Command backburner-demo exercises a Backburner's core deferral patterns
// against the real clock: queued scheduling within a run, a delayed call,
// and a debounced save.
//
// Run with: go run ./cmd/backburner-demo
package main

import (
	"fmt"
	"time"

	"github.com/joeycumines/go-backburner"
)

func main() {
	b := backburner.New([]string{"actions", "render"}, backburner.WithOnError(func(err error) {
		fmt.Println("work error:", err)
	}))

	fmt.Println("=== run + nested schedule ===")
	_, _ = b.Run(nil, func() {
		fmt.Println("outer body")
		_, _ = b.Schedule("render", nil, func() { fmt.Println("render: paint") })
		_, _ = b.Schedule("actions", nil, func() { fmt.Println("actions: save") })
	})

	fmt.Println("\n=== later ===")
	start := time.Now()
	done := make(chan struct{})
	_, _ = b.Later(func() {
		fmt.Printf("later: fired at %v\n", time.Since(start).Round(time.Millisecond))
		close(done)
	}, 50)
	<-done

	fmt.Println("\n=== debounce ===")
	debounceDone := make(chan struct{})
	saveCount := 0
	debouncedSave := func() {
		_, _ = b.Debounce(nil, func() {
			saveCount++
			fmt.Printf("debounce: save #%d\n", saveCount)
			close(debounceDone)
		}, 40, false)
	}
	debouncedSave()
	time.Sleep(10 * time.Millisecond)
	debouncedSave()
	time.Sleep(10 * time.Millisecond)
	debouncedSave()
	<-debounceDone

	fmt.Println("\ndone")
}

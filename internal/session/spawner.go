package session

import "sync"

// Spawner runs the network half of an operation off the loop. The job
// reports back by posting an event.
type Spawner interface {
	Go(job func())
}

// goSpawner runs each job on its own goroutine.
type goSpawner struct {
	wg sync.WaitGroup
}

func (g *goSpawner) Go(job func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		job()
	}()
}

func (g *goSpawner) wait() {
	g.wg.Wait()
}

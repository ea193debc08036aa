package graph

import "sync"

// SafeGo runs fn in a goroutine tracked by wg. A panic in fn is recovered and
// handed to onPanic instead of crashing the process.
func SafeGo(wg *sync.WaitGroup, fn func(), onPanic func(any)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil && onPanic != nil {
				onPanic(r)
			}
		}()
		fn()
	}()
}

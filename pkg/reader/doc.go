// Package reader turns the serial byte stream into published samples.
package reader

// The Loop is a single long-lived goroutine. It polls the Link, reassembles
// newline terminated lines, decodes them and publishes decoded samples to
// a Queue. Consumers drain the Queue in their own goroutine, which is the
// only place subscriber callbacks run.
//
// Producer: Loop
// Consumer: whoever runs Queue.Drain (presentation, logging, bridges)

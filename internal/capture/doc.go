// Package capture wires real processes to console sinks.
//
// A Runner spawns a command and pumps its stdout and stderr into two sinks,
// chunk by chunk, splitting each chunk into line fragments so the console's
// framing policy sees the same fragment stream a line-buffered writer would
// produce. Incomplete UTF-8 sequences at chunk boundaries are held back so
// chunking never manufactures decode errors.
//
// Ring is a bounded byte ring buffer retaining the tail of everything written
// to it. It is the transcript target: attached as a sink pass-through it
// captures the raw merged output without unbounded growth.
package capture

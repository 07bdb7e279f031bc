// Package frame implements the line protocol spoken by the ADC board.
package frame

// The device streams one telemetry line per sample:
//
//   A,<v1>,<v2>,<v3>,<v4>[*<checksum>][<trailing>]
//
// and accepts one command line per actuator/rate change:
//
//   SET,<mask>,<rate>\n
//
// Both directions are newline-delimited ASCII, fire-and-forget.
// Nothing in this package performs I/O or keeps state between calls.
//
// Producer: ADC board (telemetry), host (commands)
// Consumer: host (telemetry), ADC board (commands)

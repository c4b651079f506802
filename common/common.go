// Package common is the junk drawer: small helpers that every other
// package is allowed to reach for.
package common

import (
	"math"
	"os"
	"os/signal"
	"reflect"
	"runtime"
	"syscall"
)

// https://stackoverflow.com/questions/18390266/how-can-we-truncate-float64-type-to-a-particular-precision
func Round(num float64) int {
	return int(num + math.Copysign(0.5, num))
}

func DecimalToFixed(num float64, precision int) float64 {
	output := math.Pow(10, float64(precision))
	return float64(Round(num*output)) / output
}

// ReflectFunctionName returns the fully-qualified name of a function.
// eg. "github.com/sams96/rgeo.Countries10"
func ReflectFunctionName(i interface{}) string {
	return runtime.FuncForPC(reflect.ValueOf(i).Pointer()).Name()
}

// Interrupted notifies on the usual shutdown signals.
func Interrupted() <-chan os.Signal {
	interrupt := make(chan os.Signal, 2)
	signal.Notify(interrupt,
		os.Interrupt, os.Kill,
		syscall.SIGTERM, syscall.SIGQUIT,
	)
	return interrupt
}

package sizeconverter

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

type number interface {
	constraints.Float | constraints.Integer
}

// HumanReadableSize formats a byte count as B, KB or MB.
func HumanReadableSize[N number](size N) string {
	bytes := float64(size)
	switch {
	case bytes >= 1024*1024:
		return format(bytes/1024/1024, "MB")
	case bytes >= 1024:
		return format(bytes/1024, "KB")
	default:
		return format(bytes, "B")
	}
}

func format(v float64, unit string) string {
	if math.Trunc(v) == v {
		return fmt.Sprintf("%.0f %s", v, unit)
	}
	return fmt.Sprintf("%.2f %s", v, unit)
}

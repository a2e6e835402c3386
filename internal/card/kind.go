package card

import (
	"codeberg.org/mutker/dashmon/internal/models"
)

// Kind is the tagged variant of metric cards.
type Kind string

const (
	CPU     Kind = "cpu"
	Memory  Kind = "memory"
	Disk    Kind = "disk"
	Network Kind = "network"
)

// Kinds lists every card kind in display order.
var Kinds = []Kind{CPU, Memory, Disk, Network}

// Reading is the part of a snapshot a card cares about.
type Reading struct {
	Value float64
	Max   float64
	In    float64
	Out   float64
}

// Extractor pulls a Reading out of a snapshot.
type Extractor func(models.Metric) Reading

var extractors = map[Kind]Extractor{
	CPU: func(m models.Metric) Reading {
		return Reading{Value: m.CPU, Max: 100}
	},
	Memory: func(m models.Metric) Reading {
		return Reading{Value: m.Memory.Used, Max: orDefault(m.Memory.Total)}
	},
	Disk: func(m models.Metric) Reading {
		return Reading{Value: m.Disk.Used, Max: orDefault(m.Disk.Total)}
	},
	Network: func(m models.Metric) Reading {
		return Reading{Value: m.Network.In + m.Network.Out, In: m.Network.In, Out: m.Network.Out}
	},
}

// Extractor returns the kind's extraction. Unknown kinds read nothing.
func (k Kind) Extractor() Extractor {
	if fn, ok := extractors[k]; ok {
		return fn
	}
	return func(models.Metric) Reading { return Reading{} }
}

func (k Kind) Label() string {
	switch k {
	case CPU:
		return "CPU"
	case Memory:
		return "Memory"
	case Disk:
		return "Disk"
	case Network:
		return "Network"
	default:
		return string(k)
	}
}

func (k Kind) Unit() string {
	switch k {
	case CPU:
		return "%"
	case Memory, Disk:
		return "MB"
	case Network:
		return "MB/s"
	default:
		return ""
	}
}

// A missing total falls back to 100.
func orDefault(total float64) float64 {
	if total == 0 {
		return 100
	}
	return total
}

package InputParameters

import (
	"fmt"
	"io"
	"math"

	"github.com/ghodss/yaml"
)

type RotateParameters struct {
	Angle float64    `yaml:"Angle"` // Degrees
	Axis  [3]float64 `yaml:"Axis"`
}

// Parameters obtained from the YAML input file
type SimulationParameters struct {
	Title            string            `yaml:"Title"`
	NX               int               `yaml:"NX"`
	NY               int               `yaml:"NY"`
	Seed             uint64            `yaml:"Seed"`
	Drag             float64           `yaml:"Drag"`
	Bounce           float64           `yaml:"Bounce"`
	DT               float64           `yaml:"DT"`
	CollisionRadius  float64           `yaml:"CollisionRadius"`
	FinalTime        float64           `yaml:"FinalTime"`
	MaxSteps         int               `yaml:"MaxSteps"`
	PlotSteps        int               `yaml:"PlotSteps"`
	SpringConstant   float64           `yaml:"SpringConstant"`
	RestLength       float64           `yaml:"RestLength"`
	ResetRestLengths bool              `yaml:"ResetRestLengths"`
	Rotate           *RotateParameters `yaml:"Rotate"`
	Reflect          []int             `yaml:"Reflect"`
}

const ExampleFile = `
########################################
Title: "Test Case"
NX: 8
NY: 8
Seed: 1
Drag: 0.01
Bounce: 0.8
DT: 0.001
CollisionRadius: 0.
FinalTime: 1.
PlotSteps: 100
SpringConstant: 1.
RestLength: 0.
ResetRestLengths: false
Rotate:
  Angle: 30.
  Axis: [0, 0, 1]
Reflect: [2]
########################################
`

// NewSimulationParameters returns the defaults that apply to keys absent from an input file
func NewSimulationParameters() (ip *SimulationParameters) {
	ip = &SimulationParameters{
		NX:             4,
		NY:             4,
		Seed:           1,
		Bounce:         1,
		DT:             0.001,
		FinalTime:      1,
		PlotSteps:      1,
		SpringConstant: 1,
	}
	return
}

func (ip *SimulationParameters) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, ip); err != nil {
		return
	}
	return ip.Validate()
}

func (ip *SimulationParameters) Validate() (err error) {
	finite := func(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
	switch {
	case ip.NX < 1 || ip.NY < 1:
		err = fmt.Errorf("NX = %d, NY = %d: both must be at least 1", ip.NX, ip.NY)
	case !(ip.DT > 0) || !finite(ip.DT):
		err = fmt.Errorf("DT = %g: must be positive", ip.DT)
	case !(ip.Drag >= 0 && ip.Drag <= 1):
		err = fmt.Errorf("Drag = %g: must be in [0,1]", ip.Drag)
	case !(ip.Bounce >= 0) || !finite(ip.Bounce):
		err = fmt.Errorf("Bounce = %g: must be non-negative", ip.Bounce)
	case !(ip.CollisionRadius >= 0) || !finite(ip.CollisionRadius):
		err = fmt.Errorf("CollisionRadius = %g: must be non-negative", ip.CollisionRadius)
	case !(ip.SpringConstant > 0) || !finite(ip.SpringConstant):
		err = fmt.Errorf("SpringConstant = %g: must be positive", ip.SpringConstant)
	case !(ip.RestLength >= 0) || !finite(ip.RestLength):
		err = fmt.Errorf("RestLength = %g: must be non-negative", ip.RestLength)
	case ip.FinalTime <= 0 && ip.MaxSteps <= 0:
		err = fmt.Errorf("one of FinalTime or MaxSteps must be positive")
	}
	for _, d := range ip.Reflect {
		if err == nil && (d < 0 || d > 2) {
			err = fmt.Errorf("Reflect dimension %d: must be 0, 1 or 2", d)
		}
	}
	return
}

// Steps is the number of ticks in the run, MaxSteps caps the count implied by FinalTime
func (ip *SimulationParameters) Steps() (steps int) {
	if ip.FinalTime > 0 {
		steps = int(math.Ceil(ip.FinalTime/ip.DT - 1.e-9))
	}
	if ip.MaxSteps > 0 && (steps == 0 || ip.MaxSteps < steps) {
		steps = ip.MaxSteps
	}
	return
}

func (ip *SimulationParameters) Print(w io.Writer) {
	fmt.Fprintf(w, "\"%s\"\t\t= Title\n", ip.Title)
	fmt.Fprintf(w, "[%d x %d]\t\t= Grid Shape\n", ip.NX, ip.NY)
	fmt.Fprintf(w, "[%d]\t\t\t= Seed\n", ip.Seed)
	fmt.Fprintf(w, "%8.5f\t\t= DT\n", ip.DT)
	fmt.Fprintf(w, "%8.5f\t\t= FinalTime\n", ip.FinalTime)
	fmt.Fprintf(w, "[%d]\t\t\t= Steps\n", ip.Steps())
	fmt.Fprintf(w, "%8.5f\t\t= Drag\n", ip.Drag)
	fmt.Fprintf(w, "%8.5f\t\t= Bounce\n", ip.Bounce)
	fmt.Fprintf(w, "%8.5f\t\t= Collision Radius\n", ip.CollisionRadius)
	fmt.Fprintf(w, "%8.5f\t\t= Spring Constant\n", ip.SpringConstant)
	if ip.ResetRestLengths {
		fmt.Fprintf(w, "[current]\t\t= Rest Length\n")
	} else {
		fmt.Fprintf(w, "%8.5f\t\t= Rest Length\n", ip.RestLength)
	}
	if ip.Rotate != nil {
		fmt.Fprintf(w, "%8.5f about %v\t= Rotate\n", ip.Rotate.Angle, ip.Rotate.Axis)
	}
	if len(ip.Reflect) != 0 {
		fmt.Fprintf(w, "%v\t\t\t= Reflect\n", ip.Reflect)
	}
}

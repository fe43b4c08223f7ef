package hydraulic

import (
	"math"

	"github.com/san-kum/hydrosim/internal/dynamo"
)

const (
	ptuMinSpeedRpm          = 50.
	ptuLeftDisplacement     = 0.92
	ptuMinRightDisplacement = 0.65
	ptuMaxRightDisplacement = 1.21
	ptuDisplacementTau      = 0.045

	ptuShaftFriction   = 0.12
	ptuBreakoutTorque  = 2.
	ptuShaftInertia    = 0.0055
	ptuShaftSpeedTau   = 1.5
	ptuContinuousDelay = 1.5
	ptuContinuousRpm   = 400.
	ptuBarkCaptureTime = 0.133

	ptuHeatTimeConstantMean = 20.
	ptuHeatTimeConstantStd  = 5.
	ptuCoolTimeConstant     = 180.
	ptuDamageTimeConstant   = 180.
	ptuHeatingSpeedRpm      = 2000.
	// Above this on both sides the fluid keeps the unit cool.
	ptuCoolingPressure = 500.
)

var ptuDisplacementTable = dynamo.MustTable(
	[]float64{-500, -250, -100, -50, -10, 0, 100, 220, 250, 500},
	[]float64{0.65, 0.65, 0.65, 0.65, 0.65, ptuLeftDisplacement, 1.21, 1.21, 1.21, 1.21},
)

// PowerTransferUnitCharacteristics tunes a PTU for an airframe.
type PowerTransferUnitCharacteristics struct {
	Efficiency                float64 `yaml:"efficiency" json:"efficiency"`
	ActivationDeltaPressure   float64 `yaml:"activation_delta_pressure" json:"activation_delta_pressure"`
	DeactivationDeltaPressure float64 `yaml:"deactivation_delta_pressure" json:"deactivation_delta_pressure"`
	ShotToShotVariability     float64 `yaml:"shot_to_shot_variability" json:"shot_to_shot_variability"`
}

func A320PowerTransferUnitCharacteristics() PowerTransferUnitCharacteristics {
	return PowerTransferUnitCharacteristics{
		Efficiency:                0.8,
		ActivationDeltaPressure:   500,
		DeactivationDeltaPressure: 5,
		ShotToShotVariability:     0.12,
	}
}

// PowerTransferUnit is a motor/pump pair on a common shaft linking two
// circuits. The left side has a fixed displacement, the right side a
// variable one. A negative shaft speed means the left circuit drives the
// right one.
type PowerTransferUnit struct {
	rnd *dynamo.Random

	enabled     bool
	activeLeft  bool
	activeRight bool
	flowToLeft  float64
	flowToRight float64
	lastFlow    float64

	rightDisplacement *dynamo.LowPassFilter
	valveOpened       bool

	shaftSpeed         float64 // rad/s
	shaftSpeedFiltered *dynamo.LowPassFilter

	continuous       bool
	rotatingLongGate *dynamo.DelayedTrueGate

	characteristics         PowerTransferUnitCharacteristics
	activationCoefficient   float64
	deactivationCoefficient float64

	durationSinceActive float64
	capturedSpeed       float64 // rpm
	barkStrength        int
	stoppedSinceWrite   bool

	heat *HeatingProperties
}

func NewPowerTransferUnit(ch PowerTransferUnitCharacteristics, rnd *dynamo.Random) *PowerTransferUnit {
	return &PowerTransferUnit{
		rnd:                     rnd,
		rightDisplacement:       dynamo.NewLowPassFilter(ptuDisplacementTau),
		shaftSpeedFiltered:      dynamo.NewLowPassFilter(ptuShaftSpeedTau),
		rotatingLongGate:        dynamo.NewDelayedTrueGate(ptuContinuousDelay),
		characteristics:         ch,
		activationCoefficient:   1,
		deactivationCoefficient: 1,
		heat: NewHeatingProperties(
			rnd.NormalFloor(ptuHeatTimeConstantMean, ptuHeatTimeConstantStd, 10),
			ptuCoolTimeConstant,
			ptuDamageTimeConstant,
		),
	}
}

// Update reads both circuits downstream of their priority valves. Call it
// once both circuits have stepped.
func (p *PowerTransferUnit) Update(step StepContext, left, right SectionPressure, controller PowerTransferUnitController) {
	p.enabled = controller.ShouldEnable()

	p.updateDisplacement(step.Dt, left, right)
	p.updateShaft(step.Dt, left, right)
	p.updateActiveState(step.Dt)
	p.updateContinuousState(step.Dt)
	p.captureBarkStrength()
	p.updateFlows()

	heating := math.Abs(p.rpm()) > ptuHeatingSpeedRpm &&
		(left.Pressure() < ptuCoolingPressure || right.Pressure() < ptuCoolingPressure)
	p.heat.Update(step.Dt, heating)
}

func (p *PowerTransferUnit) updateDisplacement(dt float64, left, right SectionPressure) {
	var dp float64
	if p.enabled {
		dp = left.PressureDownstreamPriorityValve() - right.PressureDownstreamPriorityValve()
	}

	switch {
	case math.Abs(dp) > p.characteristics.ActivationDeltaPressure*p.activationCoefficient:
		p.valveOpened = true
		p.activationCoefficient = p.shotToShot()
	case math.Abs(dp) < p.characteristics.DeactivationDeltaPressure*p.deactivationCoefficient:
		p.deactivationCoefficient = p.shotToShot()
		p.valveOpened = false
	}

	var target float64
	if p.valveOpened {
		target = ptuDisplacementTable.Lookup(-dp)
	} else {
		target = equilibriumDisplacement(left.PressureDownstreamPriorityValve(), right.PressureDownstreamPriorityValve())
	}
	p.rightDisplacement.Update(dt, target)
}

// equilibriumDisplacement balances torque on both sides of the shaft.
func equilibriumDisplacement(leftPressure, rightPressure float64) float64 {
	if rightPressure <= 0 {
		return ptuMaxRightDisplacement
	}
	return dynamo.Clamp(leftPressure*ptuLeftDisplacement/rightPressure, ptuMinRightDisplacement, ptuMaxRightDisplacement)
}

func (p *PowerTransferUnit) updateShaft(dt float64, left, right SectionPressure) {
	var pl, pr float64
	if p.enabled {
		pl = left.PressureDownstreamPriorityValve()
		pr = right.PressureDownstreamPriorityValve()
	}

	leftTorque := -hydraulicTorque(pl, ptuLeftDisplacement)
	rightTorque := hydraulicTorque(pr, p.rightDisplacement.Output())
	friction := ptuShaftFriction * -p.shaftSpeed
	total := friction + leftTorque + rightTorque

	if !p.heat.IsDamaged() && (p.IsRotating() || math.Abs(total) > ptuBreakoutTorque) {
		p.shaftSpeed += total / ptuShaftInertia * dt
		p.shaftSpeedFiltered.Update(dt, p.shaftSpeed)
	} else {
		p.shaftSpeed = 0
		p.shaftSpeedFiltered.Reset(0)
	}
}

func (p *PowerTransferUnit) updateActiveState(dt float64) {
	rotating := p.IsRotating()
	if rotating {
		p.durationSinceActive += dt
	} else {
		p.durationSinceActive = 0
		p.capturedSpeed = 0
		p.barkStrength = 0
		p.stoppedSinceWrite = true
	}

	p.activeLeft = rotating && p.shaftSpeed < 0
	p.activeRight = rotating && p.shaftSpeed > 0
}

func (p *PowerTransferUnit) updateContinuousState(dt float64) {
	p.rotatingLongGate.Update(dt, math.Abs(p.rpm()) > ptuContinuousRpm)
	p.continuous = (p.continuous || p.rotatingLongGate.Output()) && p.IsRotating()
}

func (p *PowerTransferUnit) captureBarkStrength() {
	if p.durationSinceActive > ptuBarkCaptureTime && p.capturedSpeed == 0 {
		p.capturedSpeed = math.Abs(p.rpm())
		p.barkStrength = barkStrength(p.capturedSpeed)
	}
}

func barkStrength(rpm float64) int {
	switch {
	case rpm > 1700:
		return 5
	case rpm > 1560:
		return 4
	case rpm > 1470:
		return 3
	case rpm > 1370:
		return 2
	default:
		return 1
	}
}

func (p *PowerTransferUnit) updateFlows() {
	rpm := p.rpm()
	switch {
	case rpm < -ptuMinSpeedRpm:
		f := gallonsPerSecond(math.Abs(rpm), ptuLeftDisplacement)
		p.flowToLeft = -f
		p.flowToRight = f * p.characteristics.Efficiency
		p.lastFlow = f
	case rpm > ptuMinSpeedRpm:
		f := gallonsPerSecond(rpm, p.rightDisplacement.Output())
		p.flowToLeft = f * p.characteristics.Efficiency
		p.flowToRight = -f
		p.lastFlow = f
	default:
		p.flowToLeft, p.flowToRight, p.lastFlow = 0, 0, 0
	}
}

func (p *PowerTransferUnit) shotToShot() float64 {
	v := p.characteristics.ShotToShotVariability
	return p.rnd.Range(1-v, 1+v)
}

func (p *PowerTransferUnit) rpm() float64 { return radPerSecToRpm(p.shaftSpeed) }

// UpdateCharacteristics swaps the tuning, for example when the airframe
// config is reloaded.
func (p *PowerTransferUnit) UpdateCharacteristics(ch PowerTransferUnitCharacteristics) {
	p.characteristics = ch
}

// ApplyOverrides takes development overrides. Zero leaves a value alone.
func (p *PowerTransferUnit) ApplyOverrides(deactivationDeltaPressure, efficiency float64) {
	if deactivationDeltaPressure != 0 {
		p.characteristics.DeactivationDeltaPressure = deactivationDeltaPressure
	}
	if efficiency != 0 {
		p.characteristics.Efficiency = efficiency
	}
}

// AcknowledgeWrite completes the bark strength handshake once the host has
// read the last written value.
func (p *PowerTransferUnit) AcknowledgeWrite() { p.stoppedSinceWrite = false }

// FlowToLeft and FlowToRight are in gal/s, positive into the circuit.
func (p *PowerTransferUnit) FlowToLeft() float64  { return p.flowToLeft }
func (p *PowerTransferUnit) FlowToRight() float64 { return p.flowToRight }
func (p *PowerTransferUnit) Flow() float64        { return p.lastFlow }

func (p *PowerTransferUnit) IsEnabled() bool            { return p.enabled }
func (p *PowerTransferUnit) IsActiveLeftToRight() bool  { return p.activeLeft }
func (p *PowerTransferUnit) IsActiveRightToLeft() bool  { return p.activeRight }
func (p *PowerTransferUnit) IsRotating() bool           { return math.Abs(p.rpm()) > ptuMinSpeedRpm }
func (p *PowerTransferUnit) IsInContinuousMode() bool   { return p.continuous }
func (p *PowerTransferUnit) IsValveOpened() bool        { return p.valveOpened }
func (p *PowerTransferUnit) ShaftSpeed() float64        { return p.rpm() }
func (p *PowerTransferUnit) RightDisplacement() float64 { return p.rightDisplacement.Output() }
func (p *PowerTransferUnit) IsOverheating() bool        { return p.heat.IsOverheating() }
func (p *PowerTransferUnit) IsDamaged() bool            { return p.heat.IsDamaged() }

// FilteredShaftSpeed is the absolute shaft rpm smoothed for display.
func (p *PowerTransferUnit) FilteredShaftSpeed() float64 {
	return math.Abs(radPerSecToRpm(p.shaftSpeedFiltered.Output()))
}

func (p *PowerTransferUnit) Characteristics() PowerTransferUnitCharacteristics {
	return p.characteristics
}

// BarkStrength reports 0 for one write after the shaft stopped, even if it
// restarted in between, so a slow reader still sees the stop.
func (p *PowerTransferUnit) BarkStrength() int {
	if p.stoppedSinceWrite {
		return 0
	}
	return p.barkStrength
}

func (p *PowerTransferUnit) Write(w Writer) {
	w.WriteBool("HYD_PTU_VALVE_OPENED", p.enabled)
	w.WriteFloat("HYD_PTU_SHAFT_RPM", p.FilteredShaftSpeed())
	w.WriteFloat("HYD_PTU_BARK_STRENGTH", float64(p.BarkStrength()))
}

package aircraft_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/hydrosim/internal/aircraft"
	"github.com/san-kum/hydrosim/internal/hydraulic"
)

const frameDt = 0.05

func runFor(a *aircraft.Aircraft, seconds float64) {
	for t := 0.0; t < seconds; t += frameDt {
		Expect(a.Step(t, frameDt)).To(Succeed())
	}
}

func inFlight(ias float64) aircraft.Flight {
	return aircraft.Flight{IndicatedAirspeedKnots: ias, OnGround: false}
}

var _ = Describe("A320 hydraulics", func() {
	var a *aircraft.Aircraft

	BeforeEach(func() {
		var err error
		a, err = aircraft.New(aircraft.DefaultConfig(), 42)
		Expect(err).NotTo(HaveOccurred())
	})

	Context("cold and dark", func() {
		It("stays depressurised", func() {
			runFor(a, 5)
			for _, color := range aircraft.Colors {
				Expect(a.Circuit(color).SystemPressure()).To(BeNumerically("<", 500))
			}
		})

		It("does not deploy the RAT on the ground", func() {
			runFor(a, 5)
			Expect(a.RAT().StowPosition()).To(BeZero())
		})
	})

	Context("with both engines at idle", func() {
		BeforeEach(func() {
			a.StartEngines()
		})

		It("pressurises green to nominal with the engine pump", func() {
			runFor(a, 20)
			Expect(a.Circuit(hydraulic.Green).SystemPressure()).To(BeNumerically("~", 3000, 250))
			Expect(a.Circuit(hydraulic.Green).SystemSectionSwitchPressurised()).To(BeTrue())
		})

		It("pressurises all three circuits", func() {
			runFor(a, 20)
			for _, color := range aircraft.Colors {
				Expect(a.Circuit(color).SystemPressure()).To(BeNumerically(">", 2500), string(color))
			}
		})

		It("closes the fire valve when the fire pushbutton is released", func() {
			runFor(a, 10)
			a.Panel().EngineFireReleased[0] = true
			a.Panel().PTUAuto = false
			runFor(a, 30)

			green := a.Circuit(hydraulic.Green)
			Expect(green.IsFireValveOpen(0)).To(BeFalse())
			Expect(green.SystemPressure()).To(BeNumerically("<", 1500))
		})

		It("moves the flight controls and uses fluid", func() {
			runFor(a, 10)
			level := a.Circuit(hydraulic.Green).ReservoirLevel()

			a.CommandSurfaces(1)
			runFor(a, 2)

			for _, color := range aircraft.Colors {
				for _, act := range a.Actuators(color) {
					Expect(act.Position()).To(BeNumerically("~", 1, 0.01), act.Name())
				}
			}
			Expect(a.Circuit(hydraulic.Green).ReservoirLevel()).To(BeNumerically("~", level, 0.05))
		})

		It("empties a leaking reservoir and loses pressure", func() {
			a.Panel().PTUAuto = false
			runFor(a, 10)

			a.SetFailure(hydraulic.Failure{Kind: hydraulic.ReservoirLeak, Target: string(hydraulic.Green)}, true)
			runFor(a, 90)

			green := a.Circuit(hydraulic.Green)
			Expect(green.Reservoir().IsEmpty()).To(BeTrue())
			Expect(green.SystemPressure()).To(BeNumerically("<", 500))
			Expect(a.Circuit(hydraulic.Yellow).SystemPressure()).To(BeNumerically(">", 2500))
		})

		It("empties the g-trap in inverted flight and the pumps stop delivering", func() {
			f := inFlight(250)
			f.Attitude.BankDeg = 180
			a.SetFlight(f)
			runFor(a, 40)

			green := a.Circuit(hydraulic.Green)
			Expect(green.Reservoir().IsGTrapEmpty()).To(BeTrue())

			edp, err := a.EngineDrivenPump(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(edp.Flow()).To(BeZero())
		})

		It("keeps a manually deployed RAT still on the ground", func() {
			runFor(a, 5)
			a.Panel().RATManOn = true
			runFor(a, 30)

			rat := a.RAT()
			Expect(rat.StowPosition()).To(Equal(1.0))
			Expect(rat.Speed()).To(BeNumerically("~", 0, 1))
			Expect(a.Circuit(hydraulic.Blue).SystemPressure()).To(BeNumerically(">", 2500))

			w := make(hydraulic.MapWriter)
			a.Write(w)
			Expect(w["RAT_RPM"]).To(BeNumerically(">=", 0))
			Expect(w["RAT_ANGULAR_POSITION"]).To(BeNumerically("<", 360))
		})
	})

	Context("with engine 1 only", func() {
		BeforeEach(func() {
			a.StartEngines()
			eng2, err := a.Engine(2)
			Expect(err).NotTo(HaveOccurred())
			eng2.SetMaster(false)
			eng2.ForceN2(0)
		})

		It("pressurises yellow through the PTU", func() {
			runFor(a, 30)
			Expect(a.Circuit(hydraulic.Yellow).SystemPressure()).To(BeNumerically(">", 1500))
			Expect(a.PTU().IsEnabled()).To(BeTrue())
		})

		It("inhibits the PTU on ground with the parking brake set", func() {
			a.Panel().ParkingBrake = true
			runFor(a, 30)
			Expect(a.PTU().IsEnabled()).To(BeFalse())
			Expect(a.Circuit(hydraulic.Yellow).SystemPressure()).To(BeNumerically("<", 500))
		})
	})

	Context("after a dual engine failure in flight", func() {
		BeforeEach(func() {
			a.StartEngines()
			a.SetFlight(inFlight(200))
			runFor(a, 5)
			for n := 1; n <= 2; n++ {
				eng, err := a.Engine(n)
				Expect(err).NotTo(HaveOccurred())
				eng.Fail()
			}
		})

		It("deploys the RAT and pressurises blue", func() {
			runFor(a, 40)
			Expect(a.Electrical().IsEmergency()).To(BeTrue())
			Expect(a.RAT().IsDeployed()).To(BeTrue())
			Expect(a.RAT().Speed()).To(BeNumerically(">", 2000))
			Expect(a.Circuit(hydraulic.Blue).SystemPressure()).To(BeNumerically(">", 1500))
		})
	})

	Context("hand pump", func() {
		It("pressurises the yellow auxiliary section and opens the cargo door", func() {
			a.Panel().HandPump = true
			a.CargoDoor().Command(1)
			runFor(a, 60)

			Expect(a.HandPump().Speed()).To(BeNumerically(">", 0))
			Expect(a.Circuit(hydraulic.Yellow).AuxiliarySection().Pressure()).To(BeNumerically(">", 1000))
			Expect(a.CargoDoor().Position()).To(BeNumerically(">", 0))
		})
	})

	It("writes telemetry for every circuit", func() {
		a.StartEngines()
		runFor(a, 1)

		w := make(hydraulic.MapWriter)
		a.Write(w)
		for _, name := range []string{
			"HYD_GREEN_SYSTEM_1_SECTION_PRESSURE",
			"HYD_BLUE_SYSTEM_1_SECTION_PRESSURE",
			"HYD_YELLOW_SYSTEM_1_SECTION_PRESSURE",
			"HYD_PTU_SHAFT_RPM",
			"RAT_STOW_POSITION",
			"ENGINE_1_N2",
			"ELEC_AC_1_IS_POWERED",
		} {
			Expect(w).To(HaveKey(name))
		}
	})

	It("rejects an invalid configuration", func() {
		cfg := aircraft.DefaultConfig()
		cfg.PhysicsStep = 0
		_, err := aircraft.New(cfg, 1)
		Expect(err).To(MatchError(aircraft.ErrInvalidConfig))
	})
})

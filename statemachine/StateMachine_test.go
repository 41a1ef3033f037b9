package statemachine_test

import (
	"signoff/statemachine"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("StateMachine", func() {
	var (
		sm *statemachine.StateMachine
	)

	BeforeEach(func() {
		//           PENDING    APPROVED      REJECTED
		// PENDING     -        V (approve)   V (reject)
		// APPROVED    X        -             X
		// REJECTED    X        X             -
		sm = statemachine.NewStateMachine(
			[]statemachine.State{
				{Name: "PENDING"},
				{Name: "APPROVED", Category: statemachine.Terminal},
				{Name: "REJECTED", Category: statemachine.Terminal},
			},
			[]statemachine.Transition{
				{Name: "approve", From: statemachine.State{Name: "PENDING"}, To: statemachine.State{Name: "APPROVED", Category: statemachine.Terminal}},
				{Name: "reject", From: statemachine.State{Name: "PENDING"}, To: statemachine.State{Name: "REJECTED", Category: statemachine.Terminal}},
			})
	})

	Describe("AvailableTransitions", func() {
		It("should return transitions matching the from and to filters", func() {
			Ω(sm.AvailableTransitions("PENDING", "")).Should(HaveLen(2))
			Ω(sm.AvailableTransitions("PENDING", "APPROVED")).Should(Equal([]statemachine.Transition{
				{Name: "approve", From: statemachine.State{Name: "PENDING"},
					To: statemachine.State{Name: "APPROVED", Category: statemachine.Terminal}},
			}))
			Ω(sm.AvailableTransitions("APPROVED", "")).Should(HaveLen(0))
			Ω(sm.AvailableTransitions("UNKNOWN", "")).Should(HaveLen(0))
		})
	})

	Describe("CanTransit", func() {
		It("should forbid transitions out of a terminal state", func() {
			Ω(sm.CanTransit("PENDING", "APPROVED")).Should(BeTrue())
			Ω(sm.CanTransit("PENDING", "REJECTED")).Should(BeTrue())
			Ω(sm.CanTransit("APPROVED", "PENDING")).Should(BeFalse())
			Ω(sm.CanTransit("APPROVED", "REJECTED")).Should(BeFalse())
			Ω(sm.CanTransit("REJECTED", "APPROVED")).Should(BeFalse())
		})
	})

	Describe("FindState", func() {
		It("should find known states only", func() {
			s, found := sm.FindState("APPROVED")
			Ω(found).Should(BeTrue())
			Ω(s.Category).Should(Equal(statemachine.Terminal))

			_, found = sm.FindState("UNKNOWN")
			Ω(found).Should(BeFalse())
		})
	})

	Describe("IsTerminal", func() {
		It("should report terminal states and only terminal states", func() {
			Ω(sm.IsTerminal("PENDING")).Should(BeFalse())
			Ω(sm.IsTerminal("APPROVED")).Should(BeTrue())
			Ω(sm.IsTerminal("REJECTED")).Should(BeTrue())
			Ω(sm.IsTerminal("UNKNOWN")).Should(BeFalse())
		})
	})
})

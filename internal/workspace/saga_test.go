package workspace_test

import (
	"context"
	"errors"

	"github.com/frahmantamala/warehouse-management/internal/workspace"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Saga", func() {
	var (
		ctx   context.Context
		saga  *workspace.Saga
		trail []string
	)

	record := func(name string) func(context.Context) error {
		return func(context.Context) error {
			trail = append(trail, name)
			return nil
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		saga = workspace.NewSaga("test", quietLogger())
		trail = nil
	})

	It("should continue past non-critical failures and retry them", func() {
		// Given
		attempts := 0
		saga.AddStep("one", false, record("run one"), record("undo one"))
		saga.AddStep("two", false, func(context.Context) error {
			attempts++
			if attempts == 1 {
				return errTemporary
			}
			trail = append(trail, "run two")
			return nil
		}, record("undo two"))
		saga.AddStep("three", false, record("run three"), record("undo three"))

		// When
		Expect(saga.Run(ctx)).To(Succeed())

		// Then
		Expect(saga.Count(workspace.StepDone)).To(Equal(2))
		Expect(saga.Steps()[1].State).To(Equal(workspace.StepFailed))
		Expect(saga.Steps()[1].Err).To(MatchError(errTemporary))

		Expect(saga.Retry(ctx)).To(Succeed())
		Expect(saga.Count(workspace.StepDone)).To(Equal(3))
		Expect(trail).To(Equal([]string{"run one", "run three", "run two"}))
	})

	It("should stop at a failed critical step", func() {
		saga.AddStep("one", true, record("run one"), nil)
		saga.AddStep("two", true, func(context.Context) error { return errTemporary }, nil)
		saga.AddStep("three", true, record("run three"), nil)

		err := saga.Run(ctx)

		Expect(err).To(MatchError(errTemporary))
		Expect(saga.Count(workspace.StepPending)).To(Equal(1))
		Expect(trail).To(Equal([]string{"run one"}))
	})

	It("should compensate done steps in reverse order", func() {
		saga.AddStep("one", false, record("run one"), record("undo one"))
		saga.AddStep("two", false, func(context.Context) error { return errTemporary }, record("undo two"))
		saga.AddStep("three", false, record("run three"), record("undo three"))
		Expect(saga.Run(ctx)).To(Succeed())
		trail = nil

		Expect(saga.Compensate(ctx)).To(Succeed())

		Expect(trail).To(Equal([]string{"undo three", "undo one"}))
		Expect(saga.Count(workspace.StepCompensated)).To(Equal(2))
		Expect(saga.Count(workspace.StepFailed)).To(Equal(1))
	})

	It("should keep steps whose undo fails as done", func() {
		saga.AddStep("one", false, record("run one"), func(context.Context) error { return errors.New("undo broke") })
		Expect(saga.Run(ctx)).To(Succeed())

		err := saga.Compensate(ctx)

		Expect(err).To(MatchError(ContainSubstring("undo broke")))
		Expect(saga.Steps()[0].State).To(Equal(workspace.StepDone))
	})

	It("should leave remaining steps pending when the context is cancelled", func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		saga.AddStep("one", false, record("run one"), nil)

		Expect(saga.Run(cancelled)).To(MatchError(context.Canceled))
		Expect(saga.Count(workspace.StepPending)).To(Equal(1))
	})
})

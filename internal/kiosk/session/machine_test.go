package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/qrkiosk/internal/dependencies/mocks"
	"github.com/mcoot/qrkiosk/internal/kiosk/gateway"
	"github.com/mcoot/qrkiosk/internal/kiosk/input"
	"github.com/mcoot/qrkiosk/internal/kiosk/loop"
	"github.com/mcoot/qrkiosk/internal/kiosk/scan"
	"github.com/mcoot/qrkiosk/internal/testutil"
)

const alphaQR = `{"groupName":"Alpha","members":4,"difficulty":2}`

// fakeSubmitter records requests and answers from a queue of outcomes
type fakeSubmitter struct {
	requests []gateway.Request
	outcomes []gateway.Outcome
}

func (f *fakeSubmitter) Submit(_ context.Context, req gateway.Request) gateway.Outcome {
	f.requests = append(f.requests, req)
	if len(f.outcomes) == 0 {
		return gateway.Failure("")
	}
	out := f.outcomes[0]
	f.outcomes = f.outcomes[1:]
	return out
}

func (f *fakeSubmitter) queue(outcomes ...gateway.Outcome) {
	f.outcomes = append(f.outcomes, outcomes...)
}

type MachineSuite struct {
	suite.Suite
	clock       *mocks.MockClock
	dispatch    *loop.Manual
	input       *input.Manager
	submitter   *fakeSubmitter
	machine     *Machine
	transitions []Transition
}

func TestMachineSuite(t *testing.T) {
	suite.Run(t, new(MachineSuite))
}

func (s *MachineSuite) SetupTest() {
	logger := testutil.NopLogger()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.dispatch = loop.NewManual()
	s.input = input.NewManager(s.clock, s.dispatch, input.DefaultConfig(), logger)
	s.submitter = &fakeSubmitter{}
	s.transitions = nil

	s.machine = New(Deps{
		Input:     s.input,
		Submitter: s.submitter,
		Clock:     s.clock,
		Dispatch:  s.dispatch,
		Logger:    logger,
		// Run submissions inline; outcomes still arrive through the dispatcher
		Spawn: func(fn func()) { fn() },
	}, DefaultConfig())
	s.machine.AddListener(ListenerFunc(func(t Transition) {
		s.transitions = append(s.transitions, t)
	}))
	s.machine.Start(context.Background())
}

func (s *MachineSuite) typeString(text string) {
	for _, r := range text {
		s.input.Keystroke(r)
	}
}

func (s *MachineSuite) states() []State {
	out := make([]State, len(s.transitions))
	for i, t := range s.transitions {
		out[i] = t.To
	}
	return out
}

// reachConfirmPending drives the machine to a pending duplicate-name prompt
func (s *MachineSuite) reachConfirmPending() {
	s.submitter.queue(gateway.DuplicateName("dupCheck failed: Alpha exists"))
	s.typeString(alphaQR)
	s.typeString("007")
	s.dispatch.Drain()
	s.Require().Equal(StateDuplicateConfirmPending, s.machine.State())
}

// Start tests

func (s *MachineSuite) TestStartsScanningWithQRFocused() {
	s.Equal(StateScanning, s.machine.State())
	s.Equal(input.ChannelQR, s.input.Owner())
	s.Require().Len(s.transitions, 1)
	s.Equal(State(""), s.transitions[0].From)
	s.Equal(StateScanning, s.transitions[0].To)
}

// QR scanning tests

func (s *MachineSuite) TestValidQRMovesToAwaitingQueueNumber() {
	s.typeString(alphaQR)

	s.Equal(StateAwaitingQueueNumber, s.machine.State())
	snap := s.machine.Snapshot()
	s.Require().NotNil(snap.Draft)
	s.Equal(scan.Draft{GroupName: "Alpha", MemberCount: 4, Difficulty: 2}, *snap.Draft)
	s.Equal(input.ChannelQueue, s.input.Owner())
	s.Equal("", s.input.Buffer(input.ChannelQueue))
	s.Equal(SeverityInfo, snap.Banner.Severity)
}

func (s *MachineSuite) TestQRGroupNameKeepsFullWidthSpace() {
	s.typeString(`{"groupName":"チーム　アルファ"}`)

	s.Require().Equal(StateAwaitingQueueNumber, s.machine.State())
	snap := s.machine.Snapshot()
	s.Require().NotNil(snap.Draft)
	s.Equal("チーム\u3000アルファ", snap.Draft.GroupName)
}

func (s *MachineSuite) TestPartialQRNeverLeavesScanning() {
	s.typeString(`{"groupName":"Alpha"`)

	s.Equal(StateScanning, s.machine.State())
	s.Equal([]State{StateScanning}, s.states())
	s.Equal(`{"groupName":"Alpha"`, s.input.Buffer(input.ChannelQR))
	s.Nil(s.machine.Snapshot().Draft)
}

func (s *MachineSuite) TestMalformedQRPassesThroughInputError() {
	s.typeString(`{"members":3}`)

	s.Equal(StateScanning, s.machine.State())
	s.Equal([]State{StateScanning, StateInputError, StateScanning}, s.states())
	s.Equal("", s.input.Buffer(input.ChannelQR))
	s.Equal(input.ChannelQR, s.input.Owner())

	banner := s.machine.Snapshot().Banner
	s.Equal(SeverityError, banner.Severity)
	s.Equal(TextInvalidQR, banner.Text)
	s.Empty(s.submitter.requests)
}

func (s *MachineSuite) TestErrorBannerClearedByNextTransition() {
	s.typeString(`{"members":3}`)
	s.typeString(alphaQR)

	s.Equal(StateAwaitingQueueNumber, s.machine.State())
	s.Equal(TextReadingQR, s.machine.Snapshot().Banner.Text)
}

func (s *MachineSuite) TestRescanAfterMalformedQR() {
	s.typeString(`not json}`)
	s.typeString(alphaQR)
	s.Equal(StateAwaitingQueueNumber, s.machine.State())
}

// Queue number tests

func (s *MachineSuite) TestQueueNumberSubmitsAfterThreeDigits() {
	s.typeString(alphaQR)
	s.typeString("00")
	s.Equal(StateAwaitingQueueNumber, s.machine.State())
	s.Equal("00", s.machine.Snapshot().QueueNumber)
	s.Empty(s.submitter.requests)

	s.typeString("7")
	s.Equal(StateSubmitting, s.machine.State())
	s.Require().Len(s.submitter.requests, 1)
	s.Equal(gateway.Request{
		GroupName:   "Alpha",
		PlayerCount: 4,
		Difficulty:  2,
		QueueNumber: "007",
		DupCheck:    false,
	}, s.submitter.requests[0])
}

func (s *MachineSuite) TestNonDigitsIgnoredInQueueNumber() {
	s.typeString(alphaQR)
	s.typeString("0x0\n7")
	s.Require().Len(s.submitter.requests, 1)
	s.Equal("007", s.submitter.requests[0].QueueNumber)
}

func (s *MachineSuite) TestInputDuringSubmittingIgnored() {
	s.typeString(alphaQR)
	s.typeString("007")
	s.Equal(input.ChannelNone, s.input.Owner())

	s.typeString("123" + alphaQR)
	s.input.OnInput(input.ChannelQueue, "999")
	s.Len(s.submitter.requests, 1)
	s.Equal(StateSubmitting, s.machine.State())
}

func (s *MachineSuite) TestQueueNumberIgnoredWhileScanning() {
	s.input.OnInput(input.ChannelQueue, "007")
	s.Equal(StateScanning, s.machine.State())
	s.Empty(s.submitter.requests)
}

// Outcome tests

func (s *MachineSuite) TestSuccessCompletesThenResets() {
	s.submitter.queue(gateway.Success("R42", "OK"))
	s.typeString(alphaQR)
	s.typeString("007")
	s.dispatch.Drain()

	s.Equal(StateComplete, s.machine.State())
	snap := s.machine.Snapshot()
	s.Equal("R42", snap.RoomID)
	s.Equal("OK", snap.Message)
	s.Equal(Banner{Severity: SeveritySuccess, Text: "OK"}, snap.Banner)
	s.Equal(input.ChannelNone, s.input.Owner())

	s.clock.Advance(DefaultCompletionDelay - time.Millisecond)
	s.dispatch.Drain()
	s.Equal(StateComplete, s.machine.State())

	s.clock.Advance(time.Millisecond)
	s.dispatch.Drain()
	s.Equal(StateScanning, s.machine.State())

	snap = s.machine.Snapshot()
	s.Nil(snap.Draft)
	s.Equal("", snap.QueueNumber)
	s.Equal("", snap.RoomID)
	s.Equal("", snap.Message)
	s.True(snap.Banner.IsZero())
	s.Equal(input.ChannelQR, s.input.Owner())
}

func (s *MachineSuite) TestSuccessWithoutMessageUsesDefaultBanner() {
	s.submitter.queue(gateway.Success("R1", ""))
	s.typeString(alphaQR)
	s.typeString("001")
	s.dispatch.Drain()
	s.Equal(TextRegistered, s.machine.Snapshot().Banner.Text)
}

func (s *MachineSuite) TestFailureReturnsToScanningWithError() {
	s.submitter.queue(gateway.Failure("queue number already used"))
	s.typeString(alphaQR)
	s.typeString("007")
	s.dispatch.Drain()

	s.Equal(StateScanning, s.machine.State())
	snap := s.machine.Snapshot()
	s.Equal(Banner{Severity: SeverityError, Text: "queue number already used"}, snap.Banner)
	s.Nil(snap.Draft)
	s.Equal("", snap.QueueNumber)
	s.Equal(input.ChannelQR, s.input.Owner())
	s.Equal("", s.input.Buffer(input.ChannelQueue))
	s.Len(s.submitter.requests, 1)
}

func (s *MachineSuite) TestDuplicateNameOpensPrompt() {
	s.reachConfirmPending()

	snap := s.machine.Snapshot()
	s.Equal("dupCheck failed: Alpha exists", snap.Prompt)
	s.Equal(SeverityWarning, snap.Banner.Severity)
	s.Equal(input.ChannelNone, s.input.Owner())
}

// Confirmation tests

func (s *MachineSuite) TestConfirmResubmitsWithOverride() {
	s.reachConfirmPending()
	s.submitter.queue(gateway.Success("R7", "OK"))

	s.Require().NoError(s.machine.Confirm())
	s.Equal(StateSubmitting, s.machine.State())
	s.Require().Len(s.submitter.requests, 2)

	first, second := s.submitter.requests[0], s.submitter.requests[1]
	s.False(first.DupCheck)
	s.True(second.DupCheck)
	second.DupCheck = false
	s.Equal(first, second)

	s.dispatch.Drain()
	s.Equal(StateComplete, s.machine.State())
	s.Equal("R7", s.machine.Snapshot().RoomID)
	s.Equal("", s.machine.Snapshot().Prompt)
}

func (s *MachineSuite) TestDeclineDiscardsSession() {
	s.reachConfirmPending()

	s.Require().NoError(s.machine.Decline())
	s.Equal(StateScanning, s.machine.State())
	snap := s.machine.Snapshot()
	s.Nil(snap.Draft)
	s.Equal("", snap.QueueNumber)
	s.Equal("", snap.Prompt)
	s.True(snap.Banner.IsZero())
	s.Equal(input.ChannelQR, s.input.Owner())
	s.Len(s.submitter.requests, 1)
}

func (s *MachineSuite) TestNextSessionAfterDeclineStartsClean() {
	s.reachConfirmPending()
	s.Require().NoError(s.machine.Decline())

	s.typeString(`{"groupName":"Beta"}`)
	s.typeString("123")
	s.Require().Len(s.submitter.requests, 2)
	s.Equal(gateway.Request{
		GroupName:   "Beta",
		PlayerCount: 1,
		Difficulty:  1,
		QueueNumber: "123",
		DupCheck:    false,
	}, s.submitter.requests[1])
}

func (s *MachineSuite) TestSecondDuplicateAfterOverrideIsFailure() {
	s.reachConfirmPending()
	s.submitter.queue(gateway.DuplicateName("dupCheck failed again"))

	s.Require().NoError(s.machine.Confirm())
	s.dispatch.Drain()

	s.Equal(StateScanning, s.machine.State())
	s.Equal(SeverityError, s.machine.Snapshot().Banner.Severity)
	s.Len(s.submitter.requests, 2)
}

func (s *MachineSuite) TestOverrideRevertsForNextSession() {
	s.reachConfirmPending()
	s.submitter.queue(gateway.Success("R7", "OK"))
	s.Require().NoError(s.machine.Confirm())
	s.dispatch.Drain()
	s.Require().NoError(s.machine.Reset())

	s.typeString(alphaQR)
	s.typeString("008")
	s.Require().Len(s.submitter.requests, 3)
	s.False(s.submitter.requests[2].DupCheck)
}

func (s *MachineSuite) TestConfirmWithoutPromptFails() {
	s.ErrorIs(s.machine.Confirm(), ErrNoPendingConfirmation)
	s.ErrorIs(s.machine.Decline(), ErrNoPendingConfirmation)
}

func (s *MachineSuite) TestConfirmTwiceOnlySubmitsOnce() {
	s.reachConfirmPending()
	s.Require().NoError(s.machine.Confirm())
	s.ErrorIs(s.machine.Confirm(), ErrNoPendingConfirmation)
	s.Len(s.submitter.requests, 2)
}

// Reset tests

func (s *MachineSuite) TestResetRefusedWhileSubmitting() {
	s.typeString(alphaQR)
	s.typeString("007")

	s.ErrorIs(s.machine.Reset(), ErrSubmissionInFlight)
	s.Equal(StateSubmitting, s.machine.State())
}

func (s *MachineSuite) TestResetFromCompleteCancelsTimer() {
	s.submitter.queue(gateway.Success("R42", "OK"))
	s.typeString(alphaQR)
	s.typeString("007")
	s.dispatch.Drain()
	s.Require().Equal(1, s.clock.PendingTimers())

	s.Require().NoError(s.machine.Reset())
	s.Equal(StateScanning, s.machine.State())
	s.Equal(0, s.clock.PendingTimers())

	// A new session is under way when the old deadline passes
	s.typeString(alphaQR)
	s.clock.Advance(DefaultCompletionDelay)
	s.dispatch.Drain()
	s.Equal(StateAwaitingQueueNumber, s.machine.State())
}

func (s *MachineSuite) TestResetFromAwaitingQueueNumber() {
	s.typeString(alphaQR)
	s.typeString("0")
	s.Require().NoError(s.machine.Reset())

	s.Equal(StateScanning, s.machine.State())
	s.Nil(s.machine.Snapshot().Draft)
	s.Equal("", s.input.Buffer(input.ChannelQueue))
}

func (s *MachineSuite) TestResetDismissesPrompt() {
	s.reachConfirmPending()
	s.Require().NoError(s.machine.Reset())
	s.ErrorIs(s.machine.Confirm(), ErrNoPendingConfirmation)
}

func (s *MachineSuite) TestSessionIDAdvancesPerSession() {
	first := s.machine.Snapshot().SessionID
	s.Require().NoError(s.machine.Reset())
	s.Equal(first+1, s.machine.Snapshot().SessionID)
}

// In-flight invariant

func (s *MachineSuite) TestAtMostOneSubmissionInFlight() {
	// Count requests issued while an earlier outcome is still undelivered
	s.submitter.queue(
		gateway.DuplicateName("dupCheck"),
		gateway.Success("R1", "OK"),
	)

	s.typeString(alphaQR)
	s.typeString("007")
	s.Len(s.submitter.requests, 1)
	s.Equal(1, s.dispatch.Pending())

	// Nothing the operator does before the outcome lands can issue another request
	s.typeString("000")
	s.ErrorIs(s.machine.Confirm(), ErrNoPendingConfirmation)
	s.Len(s.submitter.requests, 1)

	s.dispatch.Drain()
	s.Require().NoError(s.machine.Confirm())
	s.Len(s.submitter.requests, 2)
	s.Equal(1, s.dispatch.Pending())
	s.dispatch.Drain()
	s.Equal(StateComplete, s.machine.State())
}

func (s *MachineSuite) TestCustomCompletionDelay() {
	m := New(Deps{
		Input:     input.NewManager(s.clock, s.dispatch, input.DefaultConfig(), testutil.NopLogger()),
		Submitter: s.submitter,
		Clock:     s.clock,
		Dispatch:  s.dispatch,
		Logger:    testutil.NopLogger(),
		Spawn:     func(fn func()) { fn() },
	}, Config{CompletionDelay: time.Second})
	s.Equal(time.Second, m.timer.Delay())
}

package debugger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"jdb/pkg/dbgproto"
)

func TestLegalInModeAlwaysLegalMessagesWorkEverywhere(t *testing.T) {
	always := []dbgproto.Ingress{
		dbgproto.IngressFreeByteCodeCP,
		dbgproto.IngressUpdateBreakpoint,
		dbgproto.IngressExceptionConfig,
		dbgproto.IngressParserConfig,
		dbgproto.IngressMemStats,
		dbgproto.IngressStop,
	}
	modes := []PrimaryMode{ModeRun, ModeBreakpoint, ModeParserWait, ModeClientSourceWait}

	for _, mode := range modes {
		for _, msg := range always {
			require.True(t, legalInMode(msg, mode), "%s should be legal in %s", msg, mode)
		}
	}
}

func TestLegalInModeBreakpointOnlyCommandsRejectedElsewhere(t *testing.T) {
	breakpointOnly := []dbgproto.Ingress{
		dbgproto.IngressContinue,
		dbgproto.IngressStep,
		dbgproto.IngressNext,
		dbgproto.IngressFinish,
		dbgproto.IngressGetBacktrace,
		dbgproto.IngressEval,
		dbgproto.IngressThrow,
	}
	for _, msg := range breakpointOnly {
		require.True(t, legalInMode(msg, ModeBreakpoint), "%s should be legal in breakpoint mode", msg)
		require.False(t, legalInMode(msg, ModeRun), "%s should be illegal in run mode", msg)
		require.False(t, legalInMode(msg, ModeParserWait), "%s should be illegal in parser-wait mode", msg)
		require.False(t, legalInMode(msg, ModeClientSourceWait), "%s should be illegal in client-source-wait mode", msg)
	}
}

func TestLegalInModeParserResumeOnlyInParserWait(t *testing.T) {
	require.True(t, legalInMode(dbgproto.IngressParserResume, ModeParserWait))
	require.False(t, legalInMode(dbgproto.IngressParserResume, ModeRun))
	require.False(t, legalInMode(dbgproto.IngressParserResume, ModeBreakpoint))
}

func TestLegalInModeClientSourceCommandsOnlyInClientSourceWait(t *testing.T) {
	clientSourceOnly := []dbgproto.Ingress{
		dbgproto.IngressClientSource,
		dbgproto.IngressClientSourcePart,
		dbgproto.IngressNoMoreSources,
		dbgproto.IngressContextReset,
	}
	for _, msg := range clientSourceOnly {
		require.True(t, legalInMode(msg, ModeClientSourceWait))
		require.False(t, legalInMode(msg, ModeRun))
	}
}

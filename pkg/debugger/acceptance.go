package debugger

import "jdb/pkg/dbgproto"

// alwaysLegal holds the inbound types legal in every mode, per the
// acceptance matrix's first six rows.
var alwaysLegal = map[dbgproto.Ingress]bool{
	dbgproto.IngressFreeByteCodeCP:  true,
	dbgproto.IngressUpdateBreakpoint: true,
	dbgproto.IngressExceptionConfig: true,
	dbgproto.IngressParserConfig:    true,
	dbgproto.IngressMemStats:        true,
	dbgproto.IngressStop:            true,
}

// modeOnlyLegal holds the inbound types legal in exactly one mode beyond
// the always-legal set.
var modeOnlyLegal = map[PrimaryMode]map[dbgproto.Ingress]bool{
	ModeParserWait: {
		dbgproto.IngressParserResume: true,
	},
	ModeClientSourceWait: {
		dbgproto.IngressClientSource:     true,
		dbgproto.IngressClientSourcePart: true,
		dbgproto.IngressNoMoreSources:    true,
		dbgproto.IngressContextReset:     true,
	},
	ModeBreakpoint: {
		dbgproto.IngressContinue:     true,
		dbgproto.IngressStep:         true,
		dbgproto.IngressNext:         true,
		dbgproto.IngressFinish:       true,
		dbgproto.IngressGetBacktrace: true,
		dbgproto.IngressEval:         true,
		dbgproto.IngressEvalPart:     true,
		dbgproto.IngressThrow:        true,
		dbgproto.IngressThrowPart:    true,
	},
}

// legalInMode reports whether msgType may be processed while the
// session is in mode. Anything it rejects is a protocol error per
// spec §4.5.
func legalInMode(msgType dbgproto.Ingress, mode PrimaryMode) bool {
	if alwaysLegal[msgType] {
		return true
	}
	return modeOnlyLegal[mode][msgType]
}

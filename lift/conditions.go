package lift

// ccPredicate maps a short-branch mnemonic to its condition-code
// predicate helper, per the target runtime contract's cc_* family.
var ccPredicate = map[string]string{
	"JO": "cc_o", "JNO": "cc_no",
	"JB": "cc_b", "JAE": "cc_ae",
	"JE": "cc_e", "JNE": "cc_ne",
	"JBE": "cc_be", "JA": "cc_a",
	"JS": "cc_s", "JNS": "cc_ns",
	"JP": "cc_p", "JNP": "cc_np",
	"JL": "cc_l", "JGE": "cc_ge",
	"JLE": "cc_le", "JG": "cc_g",
}

func isConditionalJump(mnemonic string) bool {
	_, ok := ccPredicate[mnemonic]
	return ok
}

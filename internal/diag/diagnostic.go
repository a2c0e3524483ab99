package diag

type Diagnostic struct {
	Severity Severity
	Code     Code
	// Target names the build target involved, if any.
	Target  string
	Message string
	// Detail is tool output shown verbatim below the message.
	Detail string
}

// Warning is a shortcut for a SevWarning diagnostic.
func Warning(code Code, target, msg string) Diagnostic {
	return Diagnostic{Severity: SevWarning, Code: code, Target: target, Message: msg}
}

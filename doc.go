// Package transitions validates light transition configurations against a
// registry of transition kinds and hands the accepted entries to a code
// generation backend.
//
// Kinds are registered once at startup (see package kinds). A transition
// list is then validated as a whole: every entry must name a known kind, a
// capability-bound kind may only be used by a host declaring that
// capability, each entry must match its kind's field schema, and names must
// be unique within the list. All defects are reported together.
//
//	svc, err := transitions.New()
//	if err != nil {
//	    return err
//	}
//	list, err := svc.ValidateBytes(data, transitions.FormatYAML, "fastled")
//	if err != nil {
//	    return err // *validation.AggregateError
//	}
//	results, err := svc.Emit(ctx, backend, list)
package transitions

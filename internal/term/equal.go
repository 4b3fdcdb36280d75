package term

// Equal reports whether two stuck values are structurally identical -- the
// rule spec §4.F gives for comparing two stuck placeholders during a head
// check: "two stuck values compare equal iff structurally equal; otherwise,
// an error is raised." Pointer identity is checked first since most stuck
// values reaching a comparison came from the same interned node. Kinds not
// listed below are never structurally compared (false), which is
// conservative: it can make a comparer reject two terms that a deeper
// normal form would show are the same, but it never accepts two that
// aren't.
func Equal(a, b Flex) bool {
	if a == b {
		return true
	}
	switch a := a.(type) {
	case *Free:
		b, ok := b.(*Free)
		return ok && a.Kind == b.Kind && a.Index == b.Index && a.Token == b.Token
	case *Application:
		b, ok := b.(*Application)
		return ok && Equal(a.Fn, b.Fn) && Equal(a.Arg, b.Arg)
	case *HostApplication:
		b, ok := b.(*HostApplication)
		return ok && Equal(a.Fn, b.Fn) && Equal(a.Arg, b.Arg)
	case *StuckTupleElementAccess:
		b, ok := b.(*StuckTupleElementAccess)
		return ok && a.Index == b.Index && Equal(a.Subject, b.Subject)
	case *StuckRecordFieldAccess:
		b, ok := b.(*StuckRecordFieldAccess)
		return ok && a.Field == b.Field && Equal(a.Subject, b.Subject)
	case *MetaStuck:
		b, ok := b.(*MetaStuck)
		return ok && a.MV.ID == b.MV.ID
	case *HostValue:
		b, ok := b.(*HostValue)
		if !ok || a.Kind != b.Kind {
			return false
		}
		switch a.Kind {
		case HostNumber:
			return a.Num == b.Num
		case HostString:
			return a.Str == b.Str
		default:
			return a.Bool == b.Bool
		}
	case *TupleValue:
		b, ok := b.(*TupleValue)
		return ok && equalSlices(a.Elements, b.Elements)
	case *HostTupleValue:
		b, ok := b.(*HostTupleValue)
		return ok && equalSlices(a.Elements, b.Elements)
	case *RecordValue:
		b, ok := b.(*RecordValue)
		if !ok || len(a.FieldNames) != len(b.FieldNames) {
			return false
		}
		for i := range a.FieldNames {
			if a.FieldNames[i] != b.FieldNames[i] {
				return false
			}
		}
		return equalSlices(a.Fields, b.Fields)
	case *EnumValue:
		b, ok := b.(*EnumValue)
		return ok && a.Variant == b.Variant && Equal(a.Payload, b.Payload)
	case *Star:
		b, ok := b.(*Star)
		return ok && a.Level == b.Level && a.Depth == b.Depth
	default:
		return false
	}
}

func equalSlices(a, b []Flex) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

package term

import "github.com/corelang/corec/internal/cause"

// QueueCtx is the narrow handle a Relation's Constrain method gets back into
// the solver, so relation combinators (internal/relation) can queue derived
// sub-obligations -- e.g. FunctionRelation queuing a call-compatibility edge
// on a fresh unique argument -- without internal/relation importing
// internal/solver (which must import internal/relation to hold the comparer
// table). Contexts are passed as `any` rather than *rtctx.Runtime for the
// same reason: term cannot import rtctx, rtctx imports term.
type QueueCtx interface {
	Queue(left Flex, lctx any, right Flex, rctx any, rel RelationRef, why cause.Cause) error
	// QueueLeftCall records (fn arg) <=rel result. ctx is shared by fn,
	// arg, and result: slicing and combinator-derived calls are always
	// queued within a single ambient context, so tracking three separate
	// contexts would add bookkeeping no caller of this package needs yet.
	QueueLeftCall(fn, arg Flex, rel RelationRef, result Flex, ctx any, why cause.Cause) error
	// QueueRightCall records left <=rel (fn arg), the mirror of QueueLeftCall.
	QueueRightCall(left Flex, rel RelationRef, fn, arg Flex, ctx any, why cause.Cause) error
	FreshUnique() Flex
}

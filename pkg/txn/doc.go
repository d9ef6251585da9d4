// Package txn defines the canonical bank transaction record shared by every
// codec and by the comparator.
//
// A Transaction is a plain value: it is comparable with ==, it is never
// mutated after a codec builds it, and every field is typed. Amounts are
// held in minor units (scale 2) and dates as days since the Unix epoch, so
// no value ever passes through floating point on its way between formats.
package txn

// Package codec converts bank transactions between their wire formats and
// the canonical txn.Transaction.
//
// Three codecs implement the Codec interface: CSV, key-value text and the
// YPBN binary format. Every codec parses a whole input into memory and
// either returns all records or fails on the first problem; no codec ever
// substitutes a default for a field it could not parse.
//
// # CSV Format
//
// A header line followed by one record per line:
//
//	TX_ID,DATE,AMOUNT,CURRENCY,STATUS,DESCRIPTION
//	1,2024-01-15,-12.50,USD,COMPLETED,Coffee
//	2,2024-01-16,100.00,EUR,PENDING,"Rent, January"
//
// The header is matched exactly. Quoting follows RFC 4180.
//
// # Text Format
//
// Records are blocks of KEY: VALUE lines separated by blank lines. Lines
// starting with '#' are ignored:
//
//	# January
//	TX_ID: 1
//	DATE: 2024-01-15
//	AMOUNT: -12.50
//	CURRENCY: USD
//	STATUS: COMPLETED
//	DESCRIPTION: "Coffee"
//
// All six keys must appear exactly once per block and no other key is
// allowed. DESCRIPTION is double-quoted; an embedded quote is written twice.
// Descriptions with line breaks cannot be written in this format.
//
// # Binary Format
//
// All integers are big-endian:
//
//	[Magic "YPBN"(4)][Count(4)]
//	Count times:
//	[ID(8)][Date(4)][Amount(8)][Currency(3)][Status(1)][DescLen(2)][Description]
//
// Fields:
//   - Count: uint32, recomputed from the records on every write
//   - Date: int32 days since 1970-01-01
//   - Amount: int64 minor units (hundredths)
//   - Currency: ASCII, right-padded with NUL bytes
//   - Status: 0x01 PENDING, 0x02 COMPLETED, 0x03 FAILED, 0x04 CANCELLED
//   - DescLen: uint16 length of the UTF-8 description that follows
//
// A record is 26 bytes plus its description.
//
// # Error Handling
//
// Every failure is a *Error. Match the kind with errors.Is against the
// sentinels (ErrFormat, ErrInvalidMagicNumber, ErrUnexpectedEOF, ...) or
// read it with KindOf. Errors carry the 1-based record number and either the
// line (text formats) or the byte offset (binary).
//
// # Thread Safety
//
// Codecs hold only immutable configuration and are safe for concurrent use
// as long as callers do not share readers or writers.
package codec

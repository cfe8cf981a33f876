package kdb

import "errors"

// Result is the outcome of a retrieval. Every operation returns one by
// value; none of them panic on bad input.
type Result uint8

const (
	Ok Result = iota
	// NullInput means the K was the zero (null) reference.
	NullInput
	// ValueError means the value carries the error tag -128.
	ValueError
	NotTable
	NotDictionary
	NotKeyedTable
	NotVector
	// NotNumericalVector means a numeric view was asked of a mixed or
	// symbol vector. Char vectors are numeric.
	NotNumericalVector
	// InvalidQTypeId means the tag has no storage category, or the
	// category cannot be written to the requested output type.
	InvalidQTypeId
	NotMixedVector
	NotStringVector
	// NotCharVectorInMixedVector means a string view was asked of a mixed
	// vector holding an element that is not a char vector. Elements before
	// the offending one have already been written.
	NotCharVectorInMixedVector
	NotSimpleTable
	NotGuidVector
	// OutputTooSmall means the caller slice is shorter than the element
	// count. Nothing has been written.
	OutputTooSmall
	// MalformedPayload means a record or payload lies outside its heap, or
	// a dictionary or table does not have the expected shape.
	MalformedPayload
)

var resultNames = [...]string{
	Ok:                         "Ok",
	NullInput:                  "NullInput",
	ValueError:                 "ValueError",
	NotTable:                   "NotTable",
	NotDictionary:              "NotDictionary",
	NotKeyedTable:              "NotKeyedTable",
	NotVector:                  "NotVector",
	NotNumericalVector:         "NotNumericalVector",
	InvalidQTypeId:             "InvalidQTypeId",
	NotMixedVector:             "NotMixedVector",
	NotStringVector:            "NotStringVector",
	NotCharVectorInMixedVector: "NotCharVectorInMixedVector",
	NotSimpleTable:             "NotSimpleTable",
	NotGuidVector:              "NotGuidVector",
	OutputTooSmall:             "OutputTooSmall",
	MalformedPayload:           "MalformedPayload",
}

// ResultName returns the stable name of a result code, or "Invalid" for
// codes outside the taxonomy.
func ResultName(code int) string {
	if code < 0 || code >= len(resultNames) {
		return "Invalid"
	}
	return resultNames[code]
}

func (r Result) String() string {
	return ResultName(int(r))
}

var (
	ErrNullInput                  = errors.New("kdb: null input")
	ErrValueError                 = errors.New("kdb: value is an error")
	ErrNotTable                   = errors.New("kdb: not a table")
	ErrNotDictionary              = errors.New("kdb: not a dictionary")
	ErrNotKeyedTable              = errors.New("kdb: not a keyed table")
	ErrNotVector                  = errors.New("kdb: not a vector")
	ErrNotNumericalVector         = errors.New("kdb: not a numerical vector")
	ErrInvalidQTypeId             = errors.New("kdb: invalid q type id")
	ErrNotMixedVector             = errors.New("kdb: not a mixed vector")
	ErrNotStringVector            = errors.New("kdb: not a string vector")
	ErrNotCharVectorInMixedVector = errors.New("kdb: mixed vector holds a non-char vector")
	ErrNotSimpleTable             = errors.New("kdb: not a simple table")
	ErrNotGuidVector              = errors.New("kdb: not a guid vector")
	ErrOutputTooSmall             = errors.New("kdb: output slice too small")
	ErrMalformedPayload           = errors.New("kdb: malformed payload")
	ErrInvalidResult              = errors.New("kdb: invalid result code")
)

var resultErrors = [...]error{
	Ok:                         nil,
	NullInput:                  ErrNullInput,
	ValueError:                 ErrValueError,
	NotTable:                   ErrNotTable,
	NotDictionary:              ErrNotDictionary,
	NotKeyedTable:              ErrNotKeyedTable,
	NotVector:                  ErrNotVector,
	NotNumericalVector:         ErrNotNumericalVector,
	InvalidQTypeId:             ErrInvalidQTypeId,
	NotMixedVector:             ErrNotMixedVector,
	NotStringVector:            ErrNotStringVector,
	NotCharVectorInMixedVector: ErrNotCharVectorInMixedVector,
	NotSimpleTable:             ErrNotSimpleTable,
	NotGuidVector:              ErrNotGuidVector,
	OutputTooSmall:             ErrOutputTooSmall,
	MalformedPayload:           ErrMalformedPayload,
}

// Err returns nil for Ok and a sentinel error for every other result.
func (r Result) Err() error {
	if int(r) >= len(resultErrors) {
		return ErrInvalidResult
	}
	return resultErrors[r]
}

// SPDX-License-Identifier: Apache-2.0

package schema

// DataType is the dtype tag carried by a schema field.
type DataType string

const (
	DtypeString     DataType = "string"
	DtypeStringSpan DataType = "string_span"
	DtypeBoolean    DataType = "boolean"

	DtypeInt8    DataType = "int8"
	DtypeInt16   DataType = "int16"
	DtypeInt32   DataType = "int32"
	DtypeInt64   DataType = "int64"
	DtypeUint8   DataType = "uint8"
	DtypeUint16  DataType = "uint16"
	DtypeUint32  DataType = "uint32"
	DtypeUint64  DataType = "uint64"
	DtypeFloat16 DataType = "float16"
	DtypeFloat32 DataType = "float32"
	DtypeFloat64 DataType = "float64"

	DtypeTime      DataType = "time"
	DtypeDate      DataType = "date"
	DtypeTimestamp DataType = "timestamp"
	DtypeInterval  DataType = "interval"

	DtypeBinary    DataType = "binary"
	DtypeEmbedding DataType = "embedding"
	DtypeNull      DataType = "null"

	// Container markers. Older payloads tag struct and list nodes with these;
	// they never describe a leaf value.
	DtypeStruct DataType = "struct"
	DtypeList   DataType = "list"
)

// IsFloat reports whether d is a floating point type.
func IsFloat(d DataType) bool {
	switch d {
	case DtypeFloat16, DtypeFloat32, DtypeFloat64:
		return true
	}
	return false
}

// IsInteger reports whether d is a signed or unsigned integer type.
func IsInteger(d DataType) bool {
	switch d {
	case DtypeInt8, DtypeInt16, DtypeInt32, DtypeInt64,
		DtypeUint8, DtypeUint16, DtypeUint32, DtypeUint64:
		return true
	}
	return false
}

func IsNumeric(d DataType) bool {
	return IsFloat(d) || IsInteger(d)
}

func IsTemporal(d DataType) bool {
	switch d {
	case DtypeTime, DtypeDate, DtypeTimestamp, DtypeInterval:
		return true
	}
	return false
}

// IsOrdinal reports whether values of d can be ordered and binned.
func IsOrdinal(d DataType) bool {
	return IsNumeric(d) || IsTemporal(d)
}

// IsContainer reports whether d is one of the struct/list markers.
func IsContainer(d DataType) bool {
	return d == DtypeStruct || d == DtypeList
}

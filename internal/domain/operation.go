package domain

// OperationKind tags the privileged operation a proposal carries.
type OperationKind string

const (
	OperationMint           OperationKind = "MINT"
	OperationBurn           OperationKind = "BURN"
	OperationMetadataUpdate OperationKind = "METADATA_UPDATE"
)

// String returns the string representation of OperationKind.
func (k OperationKind) String() string {
	return string(k)
}

// IsValid checks if the kind is a known value.
func (k OperationKind) IsValid() bool {
	switch k {
	case OperationMint, OperationBurn, OperationMetadataUpdate:
		return true
	default:
		return false
	}
}

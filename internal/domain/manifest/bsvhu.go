package manifest

// BSVHU is the end-of-life vehicle manifest family. The simplest of
// the five: no worker step, one weight at emission and one at
// reception.
var BSVHU = (&Descriptor{
	Family: FamilyBSVHU,

	CreatedType:         "BsvhuCreated",
	UpdatedType:         "BsvhuUpdated",
	SignedType:          "BsvhuSigned",
	DeletedType:         "BsvhuDeleted",
	RevisionAppliedType: "BsvhuRevisionRequestApplied",

	DateFields: []string{
		"emitterEmissionSignatureDate",
		"transporterTransportSignatureDate",
		"transporterTransportTakenOverAt",
		"destinationReceptionDate",
		"destinationOperationDate",
		"destinationOperationSignatureDate",
		"createdAt",
		"updatedAt",
	},
	DecimalFields: []string{
		"weightValue",
		"destinationReceptionWeight",
	},
	DerivedFields: []string{
		"intermediaries",
		"canAccessDraftSirets",
	},
	StatusFields: []string{"status"},

	Signatures: map[string]string{
		"EMISSION":  "SIGNED_BY_PRODUCER",
		"TRANSPORT": "SENT",
		"OPERATION": "PROCESSED",
	},
}).compile()

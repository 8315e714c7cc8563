package manifest

// BSFF is the fluorinated refrigerant gas manifest family.
var BSFF = (&Descriptor{
	Family: FamilyBSFF,

	CreatedType:         "BsffCreated",
	UpdatedType:         "BsffUpdated",
	SignedType:          "BsffSigned",
	DeletedType:         "BsffDeleted",
	RevisionAppliedType: "BsffRevisionRequestApplied",

	DateFields: []string{
		"emitterEmissionSignatureDate",
		"transporterTransportSignatureDate",
		"transporterTransportTakenOverAt",
		"destinationReceptionDate",
		"destinationReceptionSignatureDate",
		"destinationOperationSignatureDate",
		"createdAt",
		"updatedAt",
	},
	DecimalFields: []string{
		"weightValue",
		"destinationReceptionWeight",
	},
	DerivedFields: []string{
		// Packagings and intervention sheets are relational children,
		// rebuilt from their own tables rather than from this stream.
		"packagings",
		"ficheInterventions",
		"grouping",
		"forwarding",
		"repackaging",
	},
	StatusFields: []string{"status"},

	Signatures: map[string]string{
		"EMISSION":  "SIGNED_BY_EMITTER",
		"TRANSPORT": "SENT",
		"RECEPTION": "RECEIVED",
		"OPERATION": "PROCESSED",
	},
}).compile()

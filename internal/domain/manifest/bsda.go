package manifest

// BSDA is the asbestos waste manifest family. It adds a worker step
// (the company performing the removal work) between emission and
// transport, with its own signature date.
var BSDA = (&Descriptor{
	Family: FamilyBSDA,

	CreatedType:         "BsdaCreated",
	UpdatedType:         "BsdaUpdated",
	SignedType:          "BsdaSigned",
	DeletedType:         "BsdaDeleted",
	RevisionAppliedType: "BsdaRevisionRequestApplied",

	DateFields: []string{
		"emitterEmissionSignatureDate",
		"workerWorkSignatureDate",
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
		"grouping",
		"forwarding",
		"intermediaries",
		"intermediariesOrgIds",
		"canAccessDraftOrgIds",
	},
	StatusFields: []string{"status"},

	Signatures: map[string]string{
		"EMISSION":  "SIGNED_BY_PRODUCER",
		"WORK":      "SIGNED_BY_WORKER",
		"TRANSPORT": "SENT",
		"OPERATION": "PROCESSED",
	},
}).compile()

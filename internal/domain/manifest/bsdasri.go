package manifest

// BSDASRI is the infectious medical waste manifest family. Weights are
// tracked separately at emission, transport and reception, and the
// synthesis/grouping projections are owned by the relational layer.
var BSDASRI = (&Descriptor{
	Family: FamilyBSDASRI,

	CreatedType:         "BsdasriCreated",
	UpdatedType:         "BsdasriUpdated",
	SignedType:          "BsdasriSigned",
	DeletedType:         "BsdasriDeleted",
	RevisionAppliedType: "BsdasriRevisionRequestApplied",

	DateFields: []string{
		"emitterEmissionSignatureDate",
		"transporterTransportSignatureDate",
		"transporterTakenOverAt",
		"destinationReceptionDate",
		"destinationReceptionSignatureDate",
		"destinationOperationDate",
		"destinationOperationSignatureDate",
		"createdAt",
		"updatedAt",
	},
	DecimalFields: []string{
		"emitterWasteWeightValue",
		"transporterWasteWeightValue",
		"destinationReceptionWasteWeightValue",
	},
	DerivedFields: []string{
		"grouping",
		"synthesizing",
		"synthesisEmitterSirets",
		"canAccessDraftSirets",
	},
	StatusFields: []string{"status"},

	Signatures: map[string]string{
		"EMISSION":  "SIGNED_BY_PRODUCER",
		"TRANSPORT": "SENT",
		"RECEPTION": "RECEIVED",
		"OPERATION": "PROCESSED",
	},
}).compile()

package manifest

// BSDD is the generic dangerous-waste manifest family.
//
// Its stream carries the full lifecycle of the paper "bordereau":
// draft, seal, transporter pickup, reception and final treatment. The
// quantity fields travel as numeric strings on the wire and several
// lifecycle stages each carry their own date.
var BSDD = (&Descriptor{
	Family: FamilyBSDD,

	CreatedType:         "BsddCreated",
	UpdatedType:         "BsddUpdated",
	SignedType:          "BsddSigned",
	DeletedType:         "BsddDeleted",
	RevisionAppliedType: "BsddRevisionRequestApplied",

	DateFields: []string{
		"emittedAt",
		"takenOverAt",
		"sentAt",
		"receivedAt",
		"processedAt",
		"signedAt",
		"createdAt",
		"updatedAt",
	},
	DecimalFields: []string{
		"wasteDetailsQuantity",
		"quantityReceived",
		"quantityRefused",
	},
	DerivedFields: []string{
		"appendix2Forms",
		"transportSegments",
		"intermediaries",
		"canAccessDraftSirets",
		"groupedIn",
	},
	StatusFields: []string{"status"},

	Signatures: map[string]string{
		"EMISSION":  "SIGNED_BY_PRODUCER",
		"TRANSPORT": "SENT",
		"RECEPTION": "RECEIVED",
		"OPERATION": "PROCESSED",
	},
}).compile()

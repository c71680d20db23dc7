package framework

// DefaultFrameworks returns the seeded regulatory frameworks. Requirement
// lists are intentionally condensed to the clauses audit templates commonly
// bind against; a deployment can extend the seed without code changes
// elsewhere since the catalog is built from this slice.
func DefaultFrameworks() []ComplianceFramework {
	return []ComplianceFramework{
		{
			ID:                "iso27001",
			Name:              "ISO/IEC 27001:2022",
			Version:           "2022",
			CertificationBody: "ISO",
			Requirements: []RegulatoryRequirement{
				{ID: "A.5.1", Title: "Policies for information security", Category: "Organizational", Mandatory: true},
				{ID: "A.5.15", Title: "Access control", Category: "Access Control", Mandatory: true},
				{ID: "A.5.23", Title: "Information security for use of cloud services", Category: "Organizational", Mandatory: false},
				{ID: "A.6.3", Title: "Information security awareness, education and training", Category: "People", Mandatory: true},
				{ID: "A.8.8", Title: "Management of technical vulnerabilities", Category: "Technological", Mandatory: true},
				{ID: "A.8.13", Title: "Information backup", Category: "Technological", Mandatory: true},
				{ID: "A.8.24", Title: "Use of cryptography", Category: "Cryptography", Mandatory: true},
			},
		},
		{
			ID:                "sox",
			Name:              "Sarbanes-Oxley Act",
			Version:           "2002",
			CertificationBody: "PCAOB",
			Requirements: []RegulatoryRequirement{
				{ID: "SOX-302", Title: "Corporate responsibility for financial reports", Category: "Financial Reporting", Mandatory: true},
				{ID: "SOX-404", Title: "Management assessment of internal controls", Category: "Internal Controls", Mandatory: true},
				{ID: "SOX-409", Title: "Real-time issuer disclosures", Category: "Financial Reporting", Mandatory: true},
				{ID: "SOX-802", Title: "Criminal penalties for altering documents", Category: "Records Retention", Mandatory: true},
			},
		},
		{
			ID:                "gdpr",
			Name:              "General Data Protection Regulation",
			Version:           "2016/679",
			CertificationBody: "EDPB",
			Requirements: []RegulatoryRequirement{
				{ID: "GDPR-5", Title: "Principles relating to processing of personal data", Category: "Data Protection", Mandatory: true},
				{ID: "GDPR-17", Title: "Right to erasure", Category: "Data Subject Rights", Mandatory: true},
				{ID: "GDPR-25", Title: "Data protection by design and by default", Category: "Data Protection", Mandatory: true},
				{ID: "GDPR-32", Title: "Security of processing", Category: "Security", Mandatory: true},
				{ID: "GDPR-33", Title: "Notification of a personal data breach", Category: "Incident Response", Mandatory: true},
				{ID: "GDPR-35", Title: "Data protection impact assessment", Category: "Data Protection", Mandatory: false},
			},
		},
		{
			ID:                "hipaa",
			Name:              "Health Insurance Portability and Accountability Act",
			Version:           "1996",
			CertificationBody: "HHS OCR",
			Requirements: []RegulatoryRequirement{
				{ID: "164.308", Title: "Administrative safeguards", Category: "Administrative", Mandatory: true},
				{ID: "164.310", Title: "Physical safeguards", Category: "Physical", Mandatory: true},
				{ID: "164.312", Title: "Technical safeguards", Category: "Technological", Mandatory: true},
				{ID: "164.316", Title: "Policies, procedures and documentation", Category: "Organizational", Mandatory: true},
			},
		},
		{
			ID:                "pcidss",
			Name:              "PCI Data Security Standard",
			Version:           "4.0",
			CertificationBody: "PCI SSC",
			Requirements: []RegulatoryRequirement{
				{ID: "PCI-1", Title: "Install and maintain network security controls", Category: "Network Security", Mandatory: true},
				{ID: "PCI-3", Title: "Protect stored account data", Category: "Data Protection", Mandatory: true},
				{ID: "PCI-8", Title: "Identify users and authenticate access", Category: "Access Control", Mandatory: true},
				{ID: "PCI-10", Title: "Log and monitor all access", Category: "Monitoring", Mandatory: true},
				{ID: "PCI-11", Title: "Test security of systems and networks regularly", Category: "Testing", Mandatory: true},
			},
		},
	}
}

package catalog

// Built-in module types of the certification platform.
const (
	ModuleTestingLab   ModuleType = "testing_lab"
	ModulePrograms     ModuleType = "programs"
	ModuleProducts     ModuleType = "products"
	ModuleCertificates ModuleType = "certificates"
)

// Testing-lab actions.
const (
	ActionCreateSessions ModuleAction = "create_sessions"
	ActionEditSessions   ModuleAction = "edit_sessions"
	ActionDeleteSessions ModuleAction = "delete_sessions"
	ActionManageTesters  ModuleAction = "manage_testers"
	ActionViewReports    ModuleAction = "view_reports"
	ActionExportData     ModuleAction = "export_data"
	ActionAdminister     ModuleAction = "administer"
)

// Program / product / certificate actions.
const (
	ActionManagePrograms      ModuleAction = "manage_programs"
	ActionPublishPrograms     ModuleAction = "publish_programs"
	ActionManageProducts      ModuleAction = "manage_products"
	ActionApproveProducts     ModuleAction = "approve_products"
	ActionIssueCertificates   ModuleAction = "issue_certificates"
	ActionRevokeCertificates  ModuleAction = "revoke_certificates"
	ActionVerifyCertificates  ModuleAction = "verify_certificates"
)

// TestingLab declares the testing-lab module catalog.
func TestingLab() ModuleCatalog {
	return ModuleCatalog{
		Module: ModuleTestingLab,
		Actions: []ModuleAction{
			ActionRead,
			ActionCreateSessions,
			ActionEditSessions,
			ActionDeleteSessions,
			ActionManageTesters,
			ActionViewReports,
			ActionExportData,
			ActionAdminister,
		},
		Roles: []RoleDefinition{
			{
				Name:     "Admin",
				Priority: 100,
				GrantedActions: []ModuleAction{
					ActionRead,
					ActionCreateSessions,
					ActionEditSessions,
					ActionDeleteSessions,
					ActionManageTesters,
					ActionViewReports,
					ActionExportData,
					ActionAdminister,
				},
			},
			{
				Name:     "Manager",
				Priority: 80,
				GrantedActions: []ModuleAction{
					ActionCreateSessions,
					ActionEditSessions,
					ActionManageTesters,
					ActionViewReports,
				},
			},
			{
				Name:     "Coordinator",
				Priority: 60,
				GrantedActions: []ModuleAction{
					ActionCreateSessions,
					ActionManageTesters,
				},
			},
			// Testers only get the implicit baseline read.
			{Name: "Tester", Priority: 40},
		},
	}
}

// Programs declares the programs module catalog.
func Programs() ModuleCatalog {
	return ModuleCatalog{
		Module:  ModulePrograms,
		Actions: []ModuleAction{ActionRead, ActionManagePrograms, ActionPublishPrograms, ActionExportData},
		Roles: []RoleDefinition{
			{
				Name:           "Admin",
				Priority:       100,
				GrantedActions: []ModuleAction{ActionRead, ActionManagePrograms, ActionPublishPrograms, ActionExportData},
			},
			{
				Name:           "Editor",
				Priority:       70,
				GrantedActions: []ModuleAction{ActionManagePrograms},
			},
			{Name: "Viewer", Priority: 30},
		},
	}
}

// Products declares the products module catalog.
func Products() ModuleCatalog {
	return ModuleCatalog{
		Module:  ModuleProducts,
		Actions: []ModuleAction{ActionRead, ActionManageProducts, ActionApproveProducts, ActionExportData},
		Roles: []RoleDefinition{
			{
				Name:           "Admin",
				Priority:       100,
				GrantedActions: []ModuleAction{ActionRead, ActionManageProducts, ActionApproveProducts, ActionExportData},
			},
			{
				Name:           "Reviewer",
				Priority:       60,
				GrantedActions: []ModuleAction{ActionApproveProducts},
			},
			{Name: "Viewer", Priority: 30},
		},
	}
}

// Certificates declares the certificates module catalog.
func Certificates() ModuleCatalog {
	return ModuleCatalog{
		Module:  ModuleCertificates,
		Actions: []ModuleAction{ActionRead, ActionIssueCertificates, ActionRevokeCertificates, ActionVerifyCertificates},
		Roles: []RoleDefinition{
			{
				Name:           "Registrar",
				Priority:       100,
				GrantedActions: []ModuleAction{ActionRead, ActionIssueCertificates, ActionRevokeCertificates, ActionVerifyCertificates},
			},
			{
				Name:           "Issuer",
				Priority:       70,
				GrantedActions: []ModuleAction{ActionIssueCertificates, ActionVerifyCertificates},
			},
			{
				Name:           "Verifier",
				Priority:       40,
				GrantedActions: []ModuleAction{ActionVerifyCertificates},
			},
		},
	}
}

// Default bundles every built-in module catalog.
func Default() *Catalog {
	return MustNew(TestingLab(), Programs(), Products(), Certificates())
}

package fieldops

import "github.com/fieldops/backend/internal/domain/shared"

// Entity kinds, in registration order
var (
	KindClient         = shared.NewKind("client")
	KindJob            = shared.NewKind("job")
	KindJobType        = shared.NewKind("job_type")
	KindPlantation     = shared.NewKind("plantation")
	KindTeam           = shared.NewKind("team")
	KindTeamMember     = shared.NewKind("team_member")
	KindTeamAssignment = shared.NewKind("team_assignment")
)

// Kinds returns every entity kind
func Kinds() []shared.Kind {
	return []shared.Kind{
		KindClient,
		KindJob,
		KindJobType,
		KindPlantation,
		KindTeam,
		KindTeamMember,
		KindTeamAssignment,
	}
}

// KindNames returns the names of every entity kind
func KindNames() []string {
	kinds := Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.Name
	}
	return names
}

// IsKnownKind reports whether name names an entity kind
func IsKnownKind(name string) bool {
	for _, k := range Kinds() {
		if k.Name == name {
			return true
		}
	}
	return false
}

// Models returns a zero value of every entity record, for schema tooling and tests
func Models() []any {
	return []any{
		&Client{},
		&Job{},
		&JobType{},
		&Plantation{},
		&Team{},
		&TeamMember{},
		&TeamAssignment{},
	}
}

package rbac

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

const (
	PermExamCreate    = "exam:create"
	PermExamView      = "exam:view"
	PermExamExport    = "exam:export"
	PermSessionPlay   = "session:play"
	PermResultViewOwn = "result:view-own"
	PermResultViewAll = "result:view-all"
)

// Default policy. Teachers upload documents and see every result; students
// play sessions and see their own results.
var RolePermissions = map[string][]string{
	RoleStudent: {
		PermExamView,
		PermSessionPlay,
		PermResultViewOwn,
	},
	RoleTeacher: {
		PermExamCreate,
		PermExamView,
		PermExamExport,
		PermSessionPlay,
		PermResultViewOwn,
		PermResultViewAll,
	},
	RoleAdmin: {
		"*", // everything
	},
}

package migrations

import "github.com/gloggi/ausbildung-api/internal/schema"

func email(null bool) schema.Column {
	return schema.Column{Name: "email", Type: schema.Varchar, Size: 254, Null: null}
}

var usersTable = schema.Table{
	Name: "users",
	Columns: []schema.Column{
		schema.ID(),
		{Name: "subject", Type: schema.Varchar, Size: 255, Unique: true},
		schema.Varchar100("username"),
		email(false),
		schema.VarcharDefault("first_name", ""),
		schema.VarcharDefault("last_name", ""),
		schema.Flag("is_staff"),
		schema.NotNull("created_at", schema.DateTime),
		schema.NotNull("updated_at", schema.DateTime),
	},
}

var coursesTable = schema.Table{
	Name: "courses",
	Columns: []schema.Column{
		schema.ID(),
		schema.Varchar100("name"),
		{Name: "slug", Type: schema.Varchar, Size: 50, Unique: true},
		schema.NullVarchar100("number"),
		schema.NotNull("starts_on", schema.Date),
		schema.NotNull("ends_on", schema.Date),
		schema.NotNull("registration_deadline", schema.Date),
		schema.NullVarchar100("lead_name"),
		email(true),
		schema.NotNull("created_at", schema.DateTime),
		schema.NotNull("updated_at", schema.DateTime),
	},
}

var unitsTable = schema.Table{
	Name: "units",
	Columns: []schema.Column{
		schema.ID(),
		schema.VarcharDefault("federation", "ZH"),
		schema.Varchar100("region"),
		schema.Varchar100("name"),
	},
}

// registrationsTable is the table as first created; later steps add and drop
// columns on it.
var registrationsTable = schema.Table{
	Name: "registrations",
	Columns: []schema.Column{
		schema.ID(),
		schema.ForeignKey("course_id", "courses"),
		schema.ForeignKey("user_id", "users"),
		schema.ForeignKey("unit_id", "units"),
		schema.Nullable("signed_form_received", schema.DateTime),
		schema.Nullable("paid_at", schema.DateTime),
		schema.Varchar100("nickname"),
		schema.Varchar100("first_name"),
		schema.Varchar100("last_name"),
		schema.Varchar100("gender"),
		schema.NotNull("birth_date", schema.Date),
		schema.NullVarchar100("photo"),
		schema.Varchar100("street"),
		schema.NotNull("postal_code", schema.Integer),
		schema.Varchar100("city"),
		schema.VarcharDefault("country", "CH"),
		email(false),
		schema.NullVarchar100("phone"),
		schema.NullVarchar100("mobile"),
		schema.Varchar100("unit_section"),
		schema.Varchar100("level"),
		schema.VarcharDefault("nationality", "CH"),
		schema.VarcharDefault("first_language", ""),
		schema.VarcharDefault("rail_pass", "Keines"),
		schema.Nullable("js_number", schema.Integer),
		schema.NullVarchar100("ahv_number"),
	},
	Unique: [][]string{{"course_id", "user_id"}},
}

var emergencySheetsTable = schema.Table{
	Name: "emergency_sheets",
	Columns: []schema.Column{
		schema.ID(),
		{Name: "registration_id", Type: schema.BigInt, Unique: true, References: &schema.Reference{Table: "registrations", OnDelete: "CASCADE"}},
		schema.Varchar100("contact"),
		schema.Varchar100("street"),
		schema.NotNull("postal_code", schema.Integer),
		schema.Varchar100("city"),
		schema.Varchar100("country"),
		email(false),
		schema.NullVarchar100("phone"),
		schema.NullVarchar100("mobile"),
		schema.Varchar100("health_insurer"),
		schema.Flag("helicopter_rescue"),
		schema.Varchar100("doctor_name"),
		schema.Varchar100("doctor_street"),
		schema.NotNull("doctor_postal_code", schema.Integer),
		schema.Varchar100("doctor_city"),
		schema.Varchar100("doctor_phone"),
		schema.Varchar100("tetanus_vaccination"),
		schema.NotNull("medication", schema.Text),
		schema.Flag("long_term_medication"),
		schema.NotNull("health_notes", schema.Text),
		schema.NotNull("remarks", schema.Text),
	},
}

var registrationRevisionsTable = schema.Table{
	Name: "registration_revisions",
	Columns: []schema.Column{
		schema.ID(),
		schema.ForeignKey("registration_id", "registrations"),
		{Name: "author_id", Type: schema.BigInt, Null: true, References: &schema.Reference{Table: "users", OnDelete: "SET NULL"}},
		{Name: "comment", Type: schema.Varchar, Size: 255, Default: schema.Literal("")},
		schema.NotNull("snapshot", schema.JSON),
		schema.NotNull("created_at", schema.DateTime),
	},
}

// Steps returns the declared migration sequence. Step N moves the schema from
// version N-1 to version N.
func Steps() []Step {
	return []Step{
		{
			Version:  1,
			Name:     "create_users",
			Forward:  []schema.Edit{schema.CreateTable{Table: usersTable}},
			Backward: []schema.Edit{schema.DropTable{Name: "users"}},
		},
		{
			Version:  2,
			Name:     "create_courses",
			Forward:  []schema.Edit{schema.CreateTable{Table: coursesTable}},
			Backward: []schema.Edit{schema.DropTable{Name: "courses"}},
		},
		{
			Version:  3,
			Name:     "create_units",
			Forward:  []schema.Edit{schema.CreateTable{Table: unitsTable}},
			Backward: []schema.Edit{schema.DropTable{Name: "units"}},
		},
		{
			Version:  4,
			Name:     "create_registrations",
			Forward:  []schema.Edit{schema.CreateTable{Table: registrationsTable}},
			Backward: []schema.Edit{schema.DropTable{Name: "registrations"}},
		},
		{
			Version: 5,
			Name:    "add_registration_emergency_form_received",
			Forward: []schema.Edit{
				schema.AddColumn{Table: "registrations", Column: schema.Nullable("emergency_form_received", schema.DateTime)},
			},
			Backward: []schema.Edit{
				schema.DropColumn{Table: "registrations", Column: "emergency_form_received"},
			},
		},
		{
			Version: 6,
			Name:    "add_registration_flags",
			Forward: []schema.Edit{
				schema.AddColumn{Table: "registrations", Column: schema.Flag("vegetarian")},
				schema.AddColumn{Table: "registrations", Column: schema.Flag("no_pork")},
				schema.AddColumn{Table: "registrations", Column: schema.Flag("confirmation_needed")},
			},
			Backward: []schema.Edit{
				schema.DropColumn{Table: "registrations", Column: "vegetarian"},
				schema.DropColumn{Table: "registrations", Column: "no_pork"},
				schema.DropColumn{Table: "registrations", Column: "confirmation_needed"},
			},
		},
		{
			Version: 7,
			Name:    "split_emergency_sheets",
			Forward: []schema.Edit{
				schema.CreateTable{Table: emergencySheetsTable},
				schema.DropColumn{Table: "registrations", Column: "emergency_form_received"},
				schema.DropColumn{Table: "registrations", Column: "signed_form_received"},
				schema.AddColumn{Table: "registrations", Column: schema.Nullable("registration_received_at", schema.DateTime)},
				schema.AddColumn{Table: "registrations", Column: schema.Nullable("emergency_sheet_received_at", schema.DateTime)},
			},
			Backward: []schema.Edit{
				schema.DropTable{Name: "emergency_sheets"},
				schema.AddColumn{Table: "registrations", Column: schema.Nullable("emergency_form_received", schema.DateTime)},
				schema.AddColumn{Table: "registrations", Column: schema.Nullable("signed_form_received", schema.DateTime)},
				schema.DropColumn{Table: "registrations", Column: "registration_received_at"},
				schema.DropColumn{Table: "registrations", Column: "emergency_sheet_received_at"},
			},
		},
		{
			Version:  8,
			Name:     "create_registration_revisions",
			Forward:  []schema.Edit{schema.CreateTable{Table: registrationRevisionsTable}},
			Backward: []schema.Edit{schema.DropTable{Name: "registration_revisions"}},
		},
	}
}

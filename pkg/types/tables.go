package types

// Standard table names for Store.GetTable.
const (
	MembersTable = "members"
)

// StandardTableNames lists all standard table names for enumeration.
var StandardTableNames = []string{
	MembersTable,
}

// Member filter keys accepted by the members table Fetch.
const (
	FilterName  = "name"
	FilterYear  = "year"
	FilterMonth = "month"
	FilterLeap  = "leap"
)

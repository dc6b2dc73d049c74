// Package errors provides coded, structured errors for themeassets.
//
// Asset resolution itself never fails: a missing or malformed manifest degrades
// to "serve the unmapped file". The errors in this package surface everywhere
// else, namely configuration loading, the CLI, the HTTP surface, and the one
// fatal programming error (an extension origin used before its entry point
// was configured).
//
// # Error Codes
//
// Each error has a code that maps to a category, a short message and a
// longer explanation:
//
//	err := errors.New("E141").
//	    WithDetail("No themeassets.json found in /srv/site").
//	    WithSuggestion("Pass --config or create themeassets.json")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E141: Configuration file not found
//	//
//	//   No themeassets.json found in /srv/site
//	//
//	//   Hint: Pass --config or create themeassets.json
package errors

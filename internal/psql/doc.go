// Package psql runs the PostgreSQL interactive client as a child process.
//
// A Runner executes one statement per invocation with a reader attached to
// the client's standard input, which is how COPY ... FROM STDIN receives
// rows from files the database server cannot see. Credentials travel through
// the child's environment, never through its argument list.
package psql

// Package fieldops holds the record types managed by the backend: clients and
// the plantations they own, jobs and job types, and the teams that do the work.
//
// References between records (Client.PlantationID, TeamAssignment.TeamID, ...)
// are soft: nothing in this layer checks that the referenced row exists.
package fieldops

/*
Package editor implements the services that sit around the validation engine:
project lifecycle with instrument uniqueness, and the controlled vocabularies
that feed selection inputs.

The engine itself never refuses anything; it only reports Issues. The services in
this package are where those reports become decisions:

  - Projects.Create and Projects.Update reject a second project with the same
    trimmed (type, revision) pair before touching the store.
  - Projects.Save refuses to persist when the report contains an error-level Issue.
  - Fields.AddValue enforces the enum naming convention at the point of entry.

Instrument checks are serialized per instrument key with in-process keyed mutexes
and, when configured, a ports.DistributedLocker shared across replicas.
*/
package editor

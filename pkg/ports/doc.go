/*
Package ports defines the driven ports (interfaces) of the topicflow editor.

These interfaces decouple the editor services from external implementations, allowing
them to work with various storage backends, lock providers and diagram renderers.

# Key Interfaces

  - ProjectStore: persists projects and looks them up by instrument.
  - FieldConfigStore: persists the controlled vocabularies.
  - DistributedLocker: serializes instrument-key checks across replicas.
  - Renderer: turns diagram source text into rendered markup.
*/
package ports

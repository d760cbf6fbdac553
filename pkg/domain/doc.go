/*
Package domain contains the core data shapes of the topicflow diagram editor.

A Project models one instrument, identified by its type and revision, as a set of
Topics. Each Topic is a small state machine of States connected by Transitions.
This package is kept pure and free of I/O and persistence concerns,
following Hexagonal Architecture principles.

# Key Entities

  - Project: the root entity, keyed by Instrument (type + revision).
  - Topic: one state machine inside a project, optionally the root topic.
  - State: a node of a topic. System-mandated nodes carry a SystemNode tag.
  - Transition: a directed edge carrying message and flow metadata.
  - Issue: a single validation finding with a blocking (error) or advisory (warning) level.
  - FieldConfig: the controlled vocabularies feeding the editor's selection inputs.
*/
package domain

// Package descriptor reads and writes portable type descriptors.
//
// A descriptor lists the types of one package with their fields and
// annotations, so entity methods can be generated for packages that are
// produced by other tools or described outside Go. The same format is
// printed by the -describe flag:
//
//	package: store
//	types:
//	  - name: Order
//	    fields:
//	      - name: ID
//	        type: int64
//	        annotations: [entity(id)]
//	      - name: Status
//	        type: string
//
// YAML and JSON are both accepted; an annotation is written either as
// "entity(id)" or as {namespace: entity, arg: id}.
package descriptor

// Package openapi derives type definitions from the component schemas of an
// OpenAPI 3 document.
//
// Object schemas become structs whose fields are the schema properties,
// sorted by property name. A property is marked as the identity with the
// x-entity extension:
//
//	components:
//	  schemas:
//	    Customer:
//	      type: object
//	      x-entity: derive
//	      properties:
//	        id:
//	          type: string
//	          format: uuid
//	          x-entity: id
//
// The extension key follows the configured namespace ("x-" + namespace).
package openapi

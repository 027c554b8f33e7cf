// Package manifest loads form script manifests: JSON or YAML files that list,
// per form id, which rule binds to which field and which notification text it
// shows. A loaded Form builds a fieldvalidator.Set ready to be bound on form
// load.
//
//	forms:
//	  account.main:
//	    fields:
//	      - field: websiteurl
//	        rule: url
//	        message: Please enter a valid URL
package manifest

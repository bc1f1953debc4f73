// Package scripting loads conversion rules from Lua scripts. A script
// returns the same rule structure the TOML rule files declare, but
// built programmatically, so rule sets can be generated, composed or
// parameterized at load time.
//
//	return {
//	    schema = { item = {
//	        { name = "paragraph", allow_in = { "$root" } },
//	        { name = "$text", allow_in = { "paragraph" } },
//	    } },
//	    element = { { view = "p", model = "paragraph" } },
//	    attribute_element = { { view = "strong", key = "bold" } },
//	}
package scripting

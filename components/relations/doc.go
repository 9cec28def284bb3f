// Package relations mounts the flows of a crud.Handler on net/http.
//
// Every route of the relation is served under one subtree, addressed by its
// route name (for example /relations/shop_add_order_product). Browse and the
// edit form answer with text/html; attach, detach, list attached and edit
// submissions answer with a {"success": bool, "data": ...} JSON envelope.
// GET <mount>/openapi.json serves the OpenAPI description of the routes.
package relations

// Package lua runs Lua scripts against the grouping engine.
//
// Scripts see a global module named "regroup":
//
//	regroup.items()             -- labels of the linear store, in order
//	regroup.selected()          -- labels of the selected items
//	regroup.count()             -- number of items
//	regroup.select(1, 4, 5)     -- select by 1-based position
//	regroup.select_range(3, 5)  -- select an inclusive 1-based range
//	regroup.select_labels("a")  -- select by label, returns the match count
//	regroup.clear()             -- clear the selection
//	regroup.group()             -- group the selection, returns true if grouped
//	regroup.undo()              -- returns true if something was undone
//	regroup.redo()              -- returns true if something was redone
//	regroup.can_undo()
//	regroup.can_redo()
//	regroup.tree()              -- {id=, label=, children={...}}
//	regroup.log(msg)            -- write msg to the application log
//
// Example:
//
//	regroup.select_range(3, 5)
//	assert(regroup.group())
//	assert(regroup.undo())
//	print(#regroup.items())
//
// States are sandboxed: io, os, debug and package loading are not
// available, and print writes to the state's configured output.
//
// gopher-lua's LState is not goroutine-safe. State serializes its own
// calls behind a mutex.
package lua

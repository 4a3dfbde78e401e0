package seed

import "github.com/jwebster45206/npc-engine/pkg/world"

// hclSeedFile is the top-level structure of a seed file
type hclSeedFile struct {
	Maps    []*hclMap    `hcl:"map,block"`
	Regions []*hclRegion `hcl:"region,block"`
	Items   []*hclItem   `hcl:"item,block"`
	NPCs    []*hclNPC    `hcl:"npc,block"`
	Pages   []*hclPage   `hcl:"page,block"` // pages not owned by one NPC
}

// hclMap declares a partition. Every in-bounds cell is enterable unless
// listed in a blocked block.
type hclMap struct {
	Name    string        `hcl:"name,label"`
	ID      int           `hcl:"id"`
	Width   int           `hcl:"width"`
	Height  int           `hcl:"height"`
	Blocked []world.Point `hcl:"blocked,block"`
}

type hclRegion struct {
	Description string        `hcl:"description,label"`
	ID          int           `hcl:"id"`
	Map         int           `hcl:"map"`
	Points      []world.Point `hcl:"point,block"`
}

type hclItem struct {
	Name      string         `hcl:"name,label"`
	ID        int            `hcl:"id"`
	Type      int            `hcl:"type,optional"`
	Price     int            `hcl:"price,optional"`
	Weight    int            `hcl:"weight,optional"`
	StackSize int            `hcl:"stack_size,optional"`
	Stats     map[string]int `hcl:"stats,optional"` // stat kind name to amount
}

type hclNPC struct {
	Name   string     `hcl:"name,label"`
	Image  int        `hcl:"image,optional"`
	Region int        `hcl:"region,optional"`
	Entry  string     `hcl:"entry,optional"` // page key
	Pages  []*hclPage `hcl:"page,block"`
}

// hclPage is one dialogue page. Keys are unique across the file so pages can
// be shared between NPCs.
type hclPage struct {
	Key         string       `hcl:"key,label"`
	Description string       `hcl:"description,optional"`
	Kind        string       `hcl:"kind,optional"`
	Say         string       `hcl:"say,optional"`
	Arguments   string       `hcl:"arguments,optional"`
	Success     string       `hcl:"success,optional"`
	Checks      []*hclCheck  `hcl:"check,block"`
	Actions     []*hclAction `hcl:"action,block"`
	Buttons     []*hclButton `hcl:"button,block"`
	Goods       []*hclGood   `hcl:"good,block"`
}

type hclCheck struct {
	Kind     string `hcl:"kind"`
	Operator string `hcl:"operator,optional"`
	String   string `hcl:"string,optional"`
	Int1     int    `hcl:"int1,optional"`
	Int2     int    `hcl:"int2,optional"`
	Item     int    `hcl:"item,optional"`
	Fail     string `hcl:"fail,optional"`
}

type hclAction struct {
	Kind   string `hcl:"kind"`
	String string `hcl:"string,optional"`
	Int1   int    `hcl:"int1,optional"`
	Int2   int    `hcl:"int2,optional"`
	Item   int    `hcl:"item,optional"`
	Map    int    `hcl:"map,optional"`
}

type hclButton struct {
	Button int    `hcl:"button"`
	Goto   string `hcl:"goto,optional"`
}

type hclGood struct {
	Item int     `hcl:"item"`
	Rate float64 `hcl:"rate,optional"`
	Cost int     `hcl:"cost,optional"`
}

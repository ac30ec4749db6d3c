package fruitgraph

// RelHasBenefit is the relationship type written between a Fruit and a Benefit.
const RelHasBenefit = "HAS_BENEFIT"

// benefitRels matches the current relationship type and the legacy ones
// still present in older graphs.
const benefitRels = "CO_CONG_DUNG|HAS_BENEFIT|HAS_USE"

const pingQuery = `RETURN 1 AS ok`

const benefitsQuery = `
MATCH (f:Fruit {fruit_id: $fruit_id})
OPTIONAL MATCH (f)-[:` + benefitRels + `]->(u)
RETURN collect(DISTINCT u.name) AS benefits`

const mergeBenefitsQuery = `
MATCH (f:Fruit {fruit_id: $fruit_id})
UNWIND $benefits AS name
MERGE (b:Benefit {name: name})
MERGE (f)-[:` + RelHasBenefit + `]->(b)`

// replaceBenefitsQuery deletes every benefit relationship of the fruit and
// merges the new list in one statement, so the graph side of a replace is
// atomic. UNWIND of an empty list leaves the fruit without benefits.
const replaceBenefitsQuery = `
MATCH (f:Fruit {fruit_id: $fruit_id})
OPTIONAL MATCH (f)-[r:` + benefitRels + `]->()
DELETE r
WITH DISTINCT f
UNWIND $benefits AS name
MERGE (b:Benefit {name: name})
MERGE (f)-[:` + RelHasBenefit + `]->(b)`

const reachableBenefitsQuery = `
MATCH (:Fruit)-[:` + benefitRels + `]->(u)
RETURN count(DISTINCT u) AS total_benefits`

const topFruitsQuery = `
MATCH (f:Fruit)-[:` + benefitRels + `]->(u)
RETURN f.fruit_id AS fruit_id, f.name_vi AS name_vi, f.name_en AS name_en,
       count(DISTINCT u) AS benefit_count
ORDER BY benefit_count DESC, fruit_id ASC
LIMIT $limit`

const fruitIDsQuery = `
MATCH (f:Fruit)
RETURN f.fruit_id AS fruit_id
ORDER BY fruit_id`

const countOrphanBenefitsQuery = `
MATCH (b:Benefit)
WHERE NOT ()-->(b)
RETURN count(b) AS orphans`

const deleteOrphanBenefitsQuery = `
MATCH (b:Benefit)
WHERE NOT ()-->(b)
WITH collect(b) AS orphans
FOREACH (o IN orphans | DELETE o)
RETURN size(orphans) AS orphans`

const fruitGraphQuery = `
MATCH (f:Fruit {fruit_id: $fruit_id})
OPTIONAL MATCH (f)-[r:` + benefitRels + `]->(u)
RETURN f, r, u`

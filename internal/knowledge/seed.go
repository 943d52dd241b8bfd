package knowledge

// DefaultNodes returns the built-in grade 3-5 curriculum. Callers that
// manage their own curriculum pass their node set to NewGraph directly.
func DefaultNodes() []Node {
	return []Node{
		// Grade 3
		{Code: "place-value-3digit", Title: "Place Value to 1,000", Description: "Read, write and compare three-digit numbers.", Subject: SubjectNumberSense, GradeLevel: 3, Difficulty: 1},
		{Code: "rounding-nearest-10", Title: "Rounding to 10 and 100", Description: "Round whole numbers to the nearest 10 or 100.", Subject: SubjectNumberSense, GradeLevel: 3, Difficulty: 2, Prerequisites: []string{"place-value-3digit"}},
		{Code: "add-sub-within-1000", Title: "Addition and Subtraction Within 1,000", Description: "Fluently add and subtract within 1,000 using place value strategies.", Subject: SubjectArithmetic, GradeLevel: 3, Difficulty: 2, Prerequisites: []string{"place-value-3digit"}},
		{Code: "mult-facts-0-10", Title: "Multiplication Facts 0-10", Description: "Recall products of single-digit factors.", Subject: SubjectArithmetic, GradeLevel: 3, Difficulty: 3, Prerequisites: []string{"add-sub-within-1000"}},
		{Code: "div-facts-0-10", Title: "Division Facts 0-10", Description: "Relate division to multiplication and recall quotients.", Subject: SubjectArithmetic, GradeLevel: 3, Difficulty: 3, Prerequisites: []string{"mult-facts-0-10"}},
		{Code: "fractions-unit", Title: "Unit Fractions", Description: "Understand fractions as parts of a whole.", Subject: SubjectFractions, GradeLevel: 3, Difficulty: 3, Prerequisites: []string{"div-facts-0-10"}},
		{Code: "area-perimeter", Title: "Area and Perimeter", Description: "Find areas and perimeters of rectangles.", Subject: SubjectGeometry, GradeLevel: 3, Difficulty: 4, Prerequisites: []string{"mult-facts-0-10"}},
		{Code: "time-to-minute", Title: "Time to the Minute", Description: "Tell time to the nearest minute and solve elapsed-time problems.", Subject: SubjectMeasurement, GradeLevel: 3, Difficulty: 2},

		// Grade 4
		{Code: "place-value-million", Title: "Place Value to 1,000,000", Description: "Generalize place value understanding to multi-digit numbers.", Subject: SubjectNumberSense, GradeLevel: 4, Difficulty: 1, Prerequisites: []string{"rounding-nearest-10"}},
		{Code: "multi-digit-mult", Title: "Multi-Digit Multiplication", Description: "Multiply up to four digits by one digit, and two digits by two digits.", Subject: SubjectArithmetic, GradeLevel: 4, Difficulty: 2, Prerequisites: []string{"mult-facts-0-10", "place-value-million"}},
		{Code: "long-division", Title: "Long Division", Description: "Divide multi-digit dividends by one-digit divisors with remainders.", Subject: SubjectArithmetic, GradeLevel: 4, Difficulty: 3, Prerequisites: []string{"div-facts-0-10", "multi-digit-mult"}},
		{Code: "equivalent-fractions", Title: "Equivalent Fractions", Description: "Recognize and generate equivalent fractions.", Subject: SubjectFractions, GradeLevel: 4, Difficulty: 2, Prerequisites: []string{"fractions-unit"}},
		{Code: "fraction-compare", Title: "Comparing Fractions", Description: "Compare fractions with unlike numerators and denominators.", Subject: SubjectFractions, GradeLevel: 4, Difficulty: 3, Prerequisites: []string{"equivalent-fractions"}},
		{Code: "fraction-add-sub", Title: "Adding and Subtracting Fractions", Description: "Add and subtract fractions with like denominators.", Subject: SubjectFractions, GradeLevel: 4, Difficulty: 4, Prerequisites: []string{"fraction-compare"}},
		{Code: "angles-degrees", Title: "Angles and Degrees", Description: "Measure and sketch angles in whole-number degrees.", Subject: SubjectGeometry, GradeLevel: 4, Difficulty: 3, Prerequisites: []string{"area-perimeter"}},
		{Code: "unit-conversion", Title: "Measurement Conversion", Description: "Convert among units within one measurement system.", Subject: SubjectMeasurement, GradeLevel: 4, Difficulty: 3, Prerequisites: []string{"time-to-minute", "multi-digit-mult"}},

		// Grade 5
		{Code: "decimal-place-value", Title: "Decimal Place Value", Description: "Read, write and compare decimals to thousandths.", Subject: SubjectNumberSense, GradeLevel: 5, Difficulty: 2, Prerequisites: []string{"place-value-million", "equivalent-fractions"}},
		{Code: "decimal-operations", Title: "Decimal Operations", Description: "Add, subtract, multiply and divide decimals to hundredths.", Subject: SubjectArithmetic, GradeLevel: 5, Difficulty: 3, Prerequisites: []string{"decimal-place-value", "long-division"}},
		{Code: "fraction-mult-div", Title: "Multiplying and Dividing Fractions", Description: "Multiply fractions and divide unit fractions by whole numbers.", Subject: SubjectFractions, GradeLevel: 5, Difficulty: 4, Prerequisites: []string{"fraction-add-sub", "multi-digit-mult"}},
		{Code: "unlike-denominators", Title: "Fractions With Unlike Denominators", Description: "Add and subtract fractions with unlike denominators.", Subject: SubjectFractions, GradeLevel: 5, Difficulty: 5, Prerequisites: []string{"fraction-add-sub"}},
		{Code: "volume", Title: "Volume", Description: "Measure volume by counting unit cubes and applying formulas.", Subject: SubjectGeometry, GradeLevel: 5, Difficulty: 4, Prerequisites: []string{"angles-degrees", "multi-digit-mult"}},
		{Code: "coordinate-plane", Title: "The Coordinate Plane", Description: "Graph points in the first quadrant to solve problems.", Subject: SubjectGeometry, GradeLevel: 5, Difficulty: 3, Prerequisites: []string{"angles-degrees"}},
	}
}

// DefaultGraph builds the graph from the built-in curriculum. It panics on
// validation failure: the seed is static data and a broken seed is a
// programming error, not a runtime condition.
func DefaultGraph() *Graph {
	g, err := NewGraph(DefaultNodes())
	if err != nil {
		panic(err)
	}
	return g
}

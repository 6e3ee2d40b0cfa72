// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package omml

// symbols maps Unicode math characters in m:t runs to LaTeX commands. The
// trailing space keeps commands from fusing with following letters.
var symbols = map[rune]string{
	'α': `\alpha `, 'β': `\beta `, 'γ': `\gamma `, 'δ': `\delta `,
	'ε': `\epsilon `, 'ζ': `\zeta `, 'η': `\eta `, 'θ': `\theta `,
	'ι': `\iota `, 'κ': `\kappa `, 'λ': `\lambda `, 'μ': `\mu `,
	'ν': `\nu `, 'ξ': `\xi `, 'π': `\pi `, 'ρ': `\rho `,
	'σ': `\sigma `, 'τ': `\tau `, 'υ': `\upsilon `, 'φ': `\phi `,
	'χ': `\chi `, 'ψ': `\psi `, 'ω': `\omega `,
	'Γ': `\Gamma `, 'Δ': `\Delta `, 'Θ': `\Theta `, 'Λ': `\Lambda `,
	'Ξ': `\Xi `, 'Π': `\Pi `, 'Σ': `\Sigma `, 'Φ': `\Phi `,
	'Ψ': `\Psi `, 'Ω': `\Omega `,
	'∞': `\infty `, '±': `\pm `, '∓': `\mp `, '×': `\times `,
	'÷': `\div `, '·': `\cdot `, '≤': `\leq `, '≥': `\geq `,
	'≠': `\neq `, '≈': `\approx `, '≡': `\equiv `, '∝': `\propto `,
	'→': `\rightarrow `, '←': `\leftarrow `, '⇒': `\Rightarrow `, '⇔': `\Leftrightarrow `,
	'∈': `\in `, '∉': `\notin `, '⊂': `\subset `, '⊆': `\subseteq `,
	'∪': `\cup `, '∩': `\cap `, '∅': `\emptyset `, '∀': `\forall `,
	'∃': `\exists `, '∂': `\partial `, '∇': `\nabla `, '…': `\ldots `,
	'⋯': `\cdots `, '′': `'`, '−': `-`,
}

// naryOperators maps m:naryPr/m:chr values to LaTeX big operators.
var naryOperators = map[string]string{
	"∑": `\sum`, "∏": `\prod`, "∐": `\coprod`,
	"∫": `\int`, "∬": `\iint`, "∭": `\iiint`, "∮": `\oint`,
	"⋃": `\bigcup`, "⋂": `\bigcap`, "⋁": `\bigvee`, "⋀": `\bigwedge`,
}

// functions maps function names in m:fName to LaTeX operators.
var functions = map[string]string{
	"sin": `\sin`, "cos": `\cos`, "tan": `\tan`, "cot": `\cot`,
	"sec": `\sec`, "csc": `\csc`, "log": `\log`, "ln": `\ln`,
	"exp": `\exp`, "lim": `\lim`, "max": `\max`, "min": `\min`,
	"sinh": `\sinh`, "cosh": `\cosh`, "tanh": `\tanh`, "det": `\det`,
}

// accents maps combining characters in m:accPr/m:chr to LaTeX accents.
var accents = map[string]string{
	"̀": `\grave`, "́": `\acute`, "̂": `\hat`,
	"̃": `\tilde`, "̄": `\bar`, "̅": `\overline`,
	"̆": `\breve`, "̇": `\dot`, "̈": `\ddot`,
	"̌": `\check`, "⃗": `\vec`, "⃖": `\overleftarrow`,
}

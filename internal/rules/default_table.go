package rules

import "financas/internal/core"

// defaultRows is the shipped two-level taxonomy. Section implies the default
// cost type (Fixed Expenses -> fixed, Variable Expenses -> variable);
// Movements rows resolve per category name.
var defaultRows = []core.CategoryRule{
	// Fixed Expenses
	{Section: core.SectionFixed, Category: "Moradia", Subcategory: "Aluguel"},
	{Section: core.SectionFixed, Category: "Moradia", Subcategory: "Condomínio"},
	{Section: core.SectionFixed, Category: "Moradia", Subcategory: "Energia"},
	{Section: core.SectionFixed, Category: "Moradia", Subcategory: "Água"},
	{Section: core.SectionFixed, Category: "Moradia", Subcategory: "Internet"},
	{Section: core.SectionFixed, Category: "Moradia", Subcategory: "Gás"},
	{Section: core.SectionFixed, Category: "Saúde", Subcategory: "Plano de Saúde"},
	{Section: core.SectionFixed, Category: "Saúde", Subcategory: "Seguro de Vida"},
	{Section: core.SectionFixed, Category: "Educação", Subcategory: "Mensalidade"},
	{Section: core.SectionFixed, Category: "Educação", Subcategory: "Cursos"},
	{Section: core.SectionFixed, Category: "Assinaturas", Subcategory: "Streaming"},
	{Section: core.SectionFixed, Category: "Assinaturas", Subcategory: "Academia"},
	{Section: core.SectionFixed, Category: "Assinaturas", Subcategory: "Telefone"},
	{Section: core.SectionFixed, Category: "Transporte", Subcategory: "Seguro do Carro"},
	{Section: core.SectionFixed, Category: "Transporte", Subcategory: "Financiamento"},

	// Variable Expenses
	{Section: core.SectionVariable, Category: "Alimentação", Subcategory: "Supermercado"},
	{Section: core.SectionVariable, Category: "Alimentação", Subcategory: "Restaurante"},
	{Section: core.SectionVariable, Category: "Alimentação", Subcategory: "Delivery"},
	{Section: core.SectionVariable, Category: "Alimentação", Subcategory: "Padaria"},
	{Section: core.SectionVariable, Category: "Transporte", Subcategory: "Combustível"},
	{Section: core.SectionVariable, Category: "Transporte", Subcategory: "Aplicativo"},
	{Section: core.SectionVariable, Category: "Transporte", Subcategory: "Transporte Público"},
	{Section: core.SectionVariable, Category: "Transporte", Subcategory: "Estacionamento"},
	{Section: core.SectionVariable, Category: "Saúde", Subcategory: "Farmácia"},
	{Section: core.SectionVariable, Category: "Saúde", Subcategory: "Consultas"},
	{Section: core.SectionVariable, Category: "Lazer", Subcategory: "Viagem"},
	{Section: core.SectionVariable, Category: "Lazer", Subcategory: "Cinema"},
	{Section: core.SectionVariable, Category: "Lazer", Subcategory: "Bares"},
	{Section: core.SectionVariable, Category: "Compras", Subcategory: "Roupas"},
	{Section: core.SectionVariable, Category: "Compras", Subcategory: "Eletrônicos"},
	{Section: core.SectionVariable, Category: "Compras", Subcategory: "Presentes"},
	{Section: core.SectionVariable, Category: "Pets", Subcategory: "Ração"},
	{Section: core.SectionVariable, Category: "Pets", Subcategory: "Veterinário"},

	// Movements
	{Section: core.SectionMovements, Category: "Investimentos", Subcategory: "Aplicação"},
	{Section: core.SectionMovements, Category: "Investimentos", Subcategory: "Previdência"},
	{Section: core.SectionMovements, Category: "Transferências", Subcategory: "Pix"},
	{Section: core.SectionMovements, Category: "Transferências", Subcategory: "TED"},
	{Section: core.SectionMovements, Category: "Saques", Subcategory: "Caixa Eletrônico"},
	{Section: core.SectionMovements, Category: "Salário", Subcategory: "Pagamento"},
	{Section: core.SectionMovements, Category: "Receitas", Subcategory: "Reembolso"},
	{Section: core.SectionMovements, Category: "Receitas", Subcategory: "Rendimentos"},
}
